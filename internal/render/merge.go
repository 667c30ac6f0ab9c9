package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractRegions parses a rendered page and returns the inner HTML of the first
// element matching each selector. Selectors with no match are absent from the result.
func ExtractRegions(page string, selectors []string) (map[string]template.HTML, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	out := make(map[string]template.HTML, len(selectors))
	for _, sel := range selectors {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		inner, err := found.Html()
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", sel, err)
		}
		// the backend page is trusted markup
		out[sel] = template.HTML(strings.TrimSpace(inner))
	}
	return out, nil
}
