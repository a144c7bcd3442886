package rules

import "strings"

// NormalizeMBTI validates a Myers-Briggs type code and returns its canonical
// upper-case form. Each of the four positions has exactly two legal letters:
// E/I, S/N, T/F, J/P. Returns "" for anything else.
func NormalizeMBTI(input string) string {
	value := strings.ToUpper(strings.TrimSpace(input))
	if len(value) != 4 {
		return ""
	}

	pairs := [4]string{"EI", "SN", "TF", "JP"}
	for i, allowed := range pairs {
		if !strings.ContainsRune(allowed, rune(value[i])) {
			return ""
		}
	}
	return value
}
