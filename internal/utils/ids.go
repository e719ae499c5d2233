package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseRoomIDs parses comma separated room ids, skipping entries that are
// not positive integers. Each value may itself hold a list ("1,2").
func ParseRoomIDs(values ...string) []int {
	ids := []int{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || id <= 0 {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids
}

// ParseEpoch parses a decimal epoch in seconds or milliseconds.
func ParseEpoch(s string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1e15 {
		return 0, strconv.ErrSyntax
	}
	return int64(v), nil
}
