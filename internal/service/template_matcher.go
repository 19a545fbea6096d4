package service

import "crypto/subtle"

// ExactTemplateMatcher treats templates as opaque strings and accepts only an
// exact byte match. It stands in for a similarity-scoring matcher.
type ExactTemplateMatcher struct{}

// NewExactTemplateMatcher creates an ExactTemplateMatcher.
func NewExactTemplateMatcher() ExactTemplateMatcher {
	return ExactTemplateMatcher{}
}

// Match compares in constant time for equal-length inputs.
func (ExactTemplateMatcher) Match(presented, enrolled string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(enrolled)) == 1
}
