package env

import (
	"fmt"
	"strconv"
	"strings"
)

// GetOrDefault retrieves an environment variable with a default value
func GetOrDefault(key, defaultValue string) string {
	if value, ok := Get(key); ok {
		return value
	}
	return defaultValue
}

// Int parses an integer variable. ok is false when the variable is unset.
func Int(key string) (value int, ok bool, err error) {
	raw, ok := Get(key)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, true, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return value, true, nil
}

// Float parses a floating point variable. ok is false when the variable is unset.
func Float(key string) (value float64, ok bool, err error) {
	raw, ok := Get(key)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, true, fmt.Errorf("%s: invalid number %q", key, raw)
	}
	return value, true, nil
}
