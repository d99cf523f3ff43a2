package dbmap

import "strings"

// ToSnake translates an in-memory camelCase field name to its storage
// column name: an underscore is inserted before each upper-case letter that
// follows a lower-case letter, then the result is lower-cased. The rule is
// deterministic and reversible over conventional field names.
func ToSnake(field string) string {
	var b strings.Builder
	b.Grow(len(field) + 2)

	prevLower := false
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			prevLower = false
			continue
		}
		prevLower = r >= 'a' && r <= 'z'
		b.WriteRune(r)
	}
	return b.String()
}
