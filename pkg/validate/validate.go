package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// FieldErrors collects per-field validation failures. It is returned to the
// caller verbatim, so messages are written for API consumers.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a failure for field, keeping the first message on repeats.
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nationalIDRe = regexp.MustCompile(`^\d{7,8}$`)
	digitsRe     = regexp.MustCompile(`^\d+$`)
)

// Venezuelan mobile carrier prefixes. A valid mobile number is a prefix
// followed by exactly seven digits.
var mobilePrefixes = []string{"0412", "0414", "0416", "0424", "0426"}

func Email(v string) bool {
	return emailRe.MatchString(strings.TrimSpace(v))
}

// MobilePhone reports whether v is a national mobile number: one of the five
// carrier prefixes followed by seven digits. Separators are not accepted.
func MobilePhone(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) != 11 || !digitsRe.MatchString(v) {
		return false
	}
	for _, prefix := range mobilePrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}

// NationalID reports whether v looks like a cedula: 7 or 8 digits.
func NationalID(v string) bool {
	return nationalIDRe.MatchString(strings.TrimSpace(v))
}

func Digits(v string) bool {
	return v != "" && digitsRe.MatchString(v)
}
