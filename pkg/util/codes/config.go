package codes

import "github.com/Alijeyrad/helpdesk_backend/config"

// Mixed case alphanumeric excluding ambiguous characters.
const DefaultCharset = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const DefaultTempPasswordLength = 12

type Config struct {
	TempPasswordLength int
	Charset            string
}

func DefaultConfig() Config {
	return Config{
		TempPasswordLength: DefaultTempPasswordLength,
		Charset:            DefaultCharset,
	}
}

func (c Config) charset() string {
	if c.Charset == "" {
		return DefaultCharset
	}
	return c.Charset
}

func (c Config) length() int {
	if c.TempPasswordLength < 1 {
		return DefaultTempPasswordLength
	}
	return c.TempPasswordLength
}

// FromCentralConfig converts central config.CodesConfig to package Config
func FromCentralConfig(c config.CodesConfig) Config {
	return Config{
		TempPasswordLength: c.TempPasswordLength,
		Charset:            c.Charset,
	}
}
