// Package mask hides sensitive values (emails, tokens) before they reach
// logs or terminal output.
package mask

import (
	"regexp"
	"strings"
)

// Mask replaces the second half of a string with asterisks.
func Mask(s string) string {
	l := len(s)
	if l == 0 {
		return s
	}
	if l == 1 {
		return "*"
	}
	h := int(l / 2)
	return s[0:h] + strings.Repeat("*", l-h)
}

// Email masks the local part and domain of an email address, keeping the
// TLD readable. Values without an @ are masked whole.
func Email(val string) string {
	tok := strings.Split(val, "@")
	if len(tok) != 2 {
		return Mask(val)
	}
	dot := strings.Split(tok[1], ".")
	return Mask(tok[0]) + "@" + Mask(dot[0]) + "." + strings.Join(dot[1:], ".")
}

var isJWT = regexp.MustCompile(`^[a-zA-Z0-9-_]+\.[a-zA-Z0-9-_]+\.[a-zA-Z0-9-_]+$`)

// Token masks a bearer token. JWTs keep their three-part shape with each
// segment masked so the token stays recognizable in logs.
func Token(val string) string {
	if isJWT.MatchString(val) {
		tok := strings.Split(val, ".")
		return Mask(tok[0]) + "." + Mask(tok[1]) + "." + Mask(tok[2])
	}
	return Mask(val)
}
