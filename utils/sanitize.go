package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips unsafe markup from user-submitted thread and reply text
// before it is stored.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
