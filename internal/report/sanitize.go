package report

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips every tag from recitation text. Script and style
// bodies are dropped entirely; remaining special characters are escaped.
func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
