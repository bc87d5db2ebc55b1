package table

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)), // BOM, zero-width joiners
			width.Fold,
		)
	},
}

// FoldName returns the comparison form of a header or candidate name.
func FoldName(s string) string {
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)

	if err != nil {
		out = strings.ToLower(s)
	}

	return strings.TrimSpace(out)
}
