package groupbuy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// NormalizeQuery folds full-width characters to their narrow forms, applies
// Unicode case folding and collapses whitespace, so "ＮＯＴＥＢＯＯＫ" and
// "notebook" search the same way.
func NormalizeQuery(q string) string {
	q = width.Fold.String(q)
	q = cases.Fold().String(q)
	return strings.Join(strings.Fields(q), " ")
}
