package registry

import "strings"

// ValidateID enforces the identifier shape: 1-20 ASCII chars, must start
// and end alphanumeric, body may additionally contain '.', '-', '_'.
func ValidateID(id string) bool {
	if len(id) < 1 || len(id) > 20 {
		return false
	}
	if !isAlnum(id[0]) || !isAlnum(id[len(id)-1]) {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if isAlnum(c) {
			continue
		}
		if c == '.' || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// NormalizeID lowercases an identifier for use as a storage key.
func NormalizeID(id string) string {
	return strings.ToLower(id)
}
