package scoring

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds v to two decimal places, half to even, on the shortest
// decimal representation of v. 0.745 becomes 0.74, 0.755 becomes 0.76,
// 0.125 becomes 0.12 and 2.675 becomes 2.68, even though the float64 nearest
// 2.675 lies just below it.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) <= 2 {
		return v
	}
	kept, rest := frac[:2], frac[2:]

	n, err := strconv.ParseInt(intPart+kept, 10, 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	switch {
	case rest[0] > '5':
		n++
	case rest[0] == '5':
		if strings.Trim(rest[1:], "0") != "" || n%2 == 1 {
			n++
		}
	}
	out := float64(n) / 100
	if neg {
		out = -out
	}
	return out
}
