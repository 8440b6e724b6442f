package transform

import "strconv"

func itoa(n int) string {
	return strconv.Itoa(n)
}

func intp(n int) *int {
	return &n
}

func f64p(v float64) *float64 {
	return &v
}

func boolp(v bool) *bool {
	return &v
}

// formatFaults renders a fault count for result previews without a
// trailing ".0" on whole numbers.
func formatFaults(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
