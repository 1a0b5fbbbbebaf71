package identity

import "strings"

// NormalizeUsername canonicalizes a username for case-insensitive matching.
// Trim + lower-case only; stricter rules (unicode confusables) can be added
// later behind a versioned policy.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail canonicalizes an email for case-insensitive matching.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateUsername keeps the username namespace disjoint from emails.
// AccountByIdentifier resolves one normalized string against username OR
// email, so a username carrying an "@" could shadow another account's email.
func ValidateUsername(s string) error {
	if strings.ContainsRune(s, '@') {
		return ValidationError{Op: "identity.ValidateUsername", Fields: []string{"username must not contain '@'"}}
	}
	return nil
}
