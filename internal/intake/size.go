package intake

import "strconv"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with binary (1024) scaling and two decimals,
// e.g. 1536 -> "1.50 KB". Zero renders as "0 Bytes". GB is the largest unit.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + " " + sizeUnits[i]
}
