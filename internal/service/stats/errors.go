package stats

import "errors"

var ErrInvalidTimeframe = errors.New("invalid timeframe")
