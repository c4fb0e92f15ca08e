package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	svcErr "github.com/oggyb/swipematch/internal/errors"
)

// dateLayout is the wire format of birthdates.
const dateLayout = "2006-01-02"

// Args are the named arguments of one operation. Values arrive decoded from
// JSON or a protobuf Struct, so numbers are usually float64 and ids may be
// strings.
type Args map[string]any

func (a Args) present(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// ID returns a required positive integer id.
func (a Args) ID(key string) (uint64, error) {
	if !a.present(key) {
		return 0, svcErr.InvalidOperation(key + " is required")
	}
	return toID(key, a[key])
}

// OptionalID returns 0 when key is absent.
func (a Args) OptionalID(key string) (uint64, error) {
	if !a.present(key) {
		return 0, nil
	}
	return toID(key, a[key])
}

func toID(key string, v any) (uint64, error) {
	bad := svcErr.InvalidOperation(key + " must be a positive integer id")
	switch n := v.(type) {
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(n), 10, 64)
		if err != nil || id == 0 {
			return 0, bad
		}
		return id, nil
	case json.Number:
		return toID(key, n.String())
	case float64:
		if n <= 0 || n != math.Trunc(n) || n > math.MaxInt64 {
			return 0, bad
		}
		return uint64(n), nil
	case int:
		if n <= 0 {
			return 0, bad
		}
		return uint64(n), nil
	case int64:
		if n <= 0 {
			return 0, bad
		}
		return uint64(n), nil
	case uint64:
		if n == 0 {
			return 0, bad
		}
		return n, nil
	}
	return 0, bad
}

// Int returns an integer argument, def when absent.
func (a Args) Int(key string, def int) (int, error) {
	if !a.present(key) {
		return def, nil
	}
	bad := svcErr.InvalidOperation(key + " must be an integer")
	switch n := a[key].(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, bad
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, bad
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, bad
		}
		return i, nil
	}
	return 0, bad
}

// String returns a required string argument. Blank values are allowed here;
// services decide what blank means.
func (a Args) String(key string) (string, error) {
	s, err := a.OptionalString(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", svcErr.InvalidOperation(key + " is required")
	}
	return *s, nil
}

// OptionalString returns nil when key is absent or null.
func (a Args) OptionalString(key string) (*string, error) {
	if !a.present(key) {
		return nil, nil
	}
	s, ok := a[key].(string)
	if !ok {
		return nil, svcErr.InvalidOperation(key + " must be a string")
	}
	return &s, nil
}

// OptionalDate parses a YYYY-MM-DD argument.
func (a Args) OptionalDate(key string) (*time.Time, error) {
	s, err := a.OptionalString(key)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, svcErr.InvalidOperation(fmt.Sprintf("%s must be a date (YYYY-MM-DD)", key))
	}
	return &t, nil
}
