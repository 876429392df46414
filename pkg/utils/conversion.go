package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StringToInt mengubah string angka (misal umur dari form) menjadi int
func StringToInt(str string) (int, error) {
	val, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", str)
	}
	return val, nil
}

// QueryInt membaca parameter angka opsional, fallback kalau kosong/salah
func QueryInt(str string, fallback int) int {
	val, err := StringToInt(str)
	if err != nil {
		return fallback
	}
	return val
}

// ParseDay parses YYYY-MM-DD in loc. An empty string means today in loc.
func ParseDay(str string, loc *time.Location, now time.Time) (time.Time, error) {
	if strings.TrimSpace(str) == "" {
		return now.In(loc), nil
	}
	return time.ParseInLocation(time.DateOnly, str, loc)
}
