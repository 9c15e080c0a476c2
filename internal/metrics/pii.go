package metrics

import "regexp"

// piiPatterns are checked in order; the first match decides.
var piiPatterns = []*regexp.Regexp{
	// SSN-like: 123-45-6789
	regexp.MustCompile(`\b\d{3}[-.\s]??\d{2}[-.\s]??\d{4}\b`),
	// phone-like: +1 (555) 123-4567
	regexp.MustCompile(`\b(?:\+?\d{1,3})?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	// email
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
}

// ContainsPII reports whether text matches any personal-data pattern.
func ContainsPII(text string) bool {
	for _, p := range piiPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
