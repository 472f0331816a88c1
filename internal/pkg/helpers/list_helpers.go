package helpers

import (
	"strconv"
	"strings"
)

// FormatIntList renders ids the way BGRS prints them: [42,43]
func FormatIntList(ids []int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	b.WriteByte(']')
	return b.String()
}

// FormatStringList renders names the way BGRS prints them: [alice, bob]
func FormatStringList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
