package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup with policy and returns the text unescaped, so stored values and
// search terms compare on what the user typed ("AT&T", not "AT&amp;T").
func plainText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}
