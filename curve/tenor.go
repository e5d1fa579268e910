package curve

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTenor converts tenor labels like "1W", "3M", "10Y" to year fractions.
func ParseTenor(tenor string) (float64, error) {
	s := strings.TrimSpace(strings.ToUpper(tenor))
	if s == "" {
		return 0, fmt.Errorf("ParseTenor: empty tenor")
	}
	unit := s[len(s)-1]
	num := strings.TrimSpace(s[:len(s)-1])
	switch unit {
	case 'Y':
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseTenor: %q: %w", tenor, err)
		}
		return v, nil
	case 'M':
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseTenor: %q: %w", tenor, err)
		}
		return v / 12.0, nil
	case 'W':
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseTenor: %q: %w", tenor, err)
		}
		return v * 7.0 / 365.0, nil
	case 'D':
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseTenor: %q: %w", tenor, err)
		}
		return v / 365.0, nil
	}
	// Bare numbers are taken as years.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ParseTenor: %q: unrecognised tenor", tenor)
	}
	return v, nil
}

// FormatTenor renders a year fraction as a conventional label: whole years as
// "10Y", sub-year multiples of a month as "6M", anything else as "1.5Y".
func FormatTenor(years float64) string {
	if years >= 1 && math.Abs(years-math.Round(years)) < tenorTolerance {
		return fmt.Sprintf("%dY", int(math.Round(years)))
	}
	months := years * 12.0
	if years < 1 && math.Abs(months-math.Round(months)) < 1e-6 {
		return fmt.Sprintf("%dM", int(math.Round(months)))
	}
	return strconv.FormatFloat(years, 'g', -1, 64) + "Y"
}
