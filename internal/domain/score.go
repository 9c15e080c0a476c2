package domain

import (
	"strconv"
	"strings"
)

// Score is a two-decimal trust value. It marshals in shortest form and always
// keeps a fractional part, so 1 is written as 1.0 and 0.87 as 0.87.
type Score float64

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	out := strconv.FormatFloat(float64(s), 'f', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return []byte(out), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return err
	}
	*s = Score(v)
	return nil
}
