package redis

import (
	"testing"
	"time"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

func TestFromCentralConfigDefaults(t *testing.T) {
	got := FromCentralConfig(config.RedisConfig{Addr: "cache:6379", ReadTimeoutSeconds: 9})

	if got.Addr != "cache:6379" {
		t.Fatalf("addr = %q", got.Addr)
	}
	if got.PoolSize != DefaultConfig().PoolSize {
		t.Fatalf("pool size = %d, want default", got.PoolSize)
	}
	if got.ReadTimeout != 9*time.Second {
		t.Fatalf("read timeout = %s, want 9s", got.ReadTimeout)
	}
	if got.DialTimeout != DefaultConfig().DialTimeout {
		t.Fatalf("dial timeout = %s, want default", got.DialTimeout)
	}
}
