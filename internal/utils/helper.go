package utils

import "strings"

// EmailDomain returns the lower-cased part after the last "@".
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}
