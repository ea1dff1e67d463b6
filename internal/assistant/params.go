package assistant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

// Parameter accessors tolerant of the types JSON decoding produces:
// numbers arrive as float64 or json.Number, IDs sometimes as strings.

func (p Params) string(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidParameter, key)
	}
	return s, nil
}

func (p Params) int64(key string) (int64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidParameter, key)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParameter, key)
	}
}

func (p Params) optionalInt64(key string) (int64, bool, error) {
	if _, ok := p[key]; !ok {
		return 0, false, nil
	}
	v, err := p.int64(key)
	return v, err == nil, err
}

func (p Params) decimal(key string) (decimal.Decimal, error) {
	v, ok := p[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidParameter, key)
		}
		return d, nil
	case string:
		d, err := core.ParseAmount(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidParameter, key)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", ErrInvalidParameter, key)
	}
}

func (p Params) optionalDecimal(key string) (decimal.Decimal, bool, error) {
	if _, ok := p[key]; !ok {
		return decimal.Zero, false, nil
	}
	v, err := p.decimal(key)
	return v, err == nil, err
}

func (p Params) optionalBool(key string) (bool, error) {
	v, ok := p[key]
	if !ok {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%w: %s", ErrInvalidParameter, key)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidParameter, key)
	}
}

// timeOrNow reads an optional YYYY-MM-DD date, defaulting to the current
// day. The derivation engine itself never reads the clock; the default
// belongs to this outer layer.
func (p Params) timeOrNow(key string) (time.Time, error) {
	v, ok := p[key]
	if !ok {
		return time.Now(), nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD string", ErrInvalidParameter, key)
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD string", ErrInvalidParameter, key)
	}
	return t, nil
}
