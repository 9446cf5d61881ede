package customer

import "strings"

// NormalizePhone strips everything but digits so "090-1234-5678" and
// "09012345678" compare equal.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneMatches is the fuzzy lookup predicate: normalized equality or
// substring containment in either direction, tolerating partial entry
// while the user is still typing.
func PhoneMatches(stored, query string) bool {
	s := NormalizePhone(stored)
	q := NormalizePhone(query)
	if s == "" || q == "" {
		return false
	}
	return strings.Contains(s, q) || strings.Contains(q, s)
}

// BestMatch picks at most one candidate for a query: an exact normalized
// match wins, otherwise the first containment match in input order.
func BestMatch(candidates []*Customer, query string) *Customer {
	q := NormalizePhone(query)
	if q == "" {
		return nil
	}

	var first *Customer
	for _, c := range candidates {
		s := NormalizePhone(c.Phone())
		if s == q {
			return c
		}
		if first == nil && PhoneMatches(c.Phone(), query) {
			first = c
		}
	}
	return first
}
