package poster

import (
	"strings"
	"time"
)

// dateLayout renders dates like "March 14, 2026".
const dateLayout = "January 2, 2006"

// Caption expands the {date} placeholder in template with the given time.
// A template without the placeholder is returned unchanged.
func Caption(template string, t time.Time) string {
	return strings.ReplaceAll(template, "{date}", t.Format(dateLayout))
}
