package util

import "strconv"

// ParseIntDefault returns s as an int, or def when s is empty or not a
// number.
func ParseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
