package handler

import (
	"fmt"
	"strconv"
	"strings"
)

func parsePageParam(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("invalid page")
	}
	return parsed, nil
}
