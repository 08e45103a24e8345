package mul

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mechdex/mechdex/internal/model"
)

// ParseAvailability extracts era/faction availability records from a
// MUL unit detail page. Each era panel names an era in its heading and
// lists factions as table rows in its body.
//
// The second return value reports whether the document looked like a
// MUL detail page at all (it carries an h2 heading). A recognized page
// with zero records is a legitimate result; an unrecognized page means
// the cached HTML is stale or truncated and should be flagged upstream.
func ParseAvailability(htmlContent string) ([]model.AvailabilityRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, false
	}

	recognized := doc.Find("h2").Length() > 0

	var records []model.AvailabilityRecord
	doc.Find(".panel.panel-default").Each(func(_ int, panel *goquery.Selection) {
		heading := panel.Find(".panel-heading .media-body a").First()
		era := stripYearRange(strings.TrimSpace(heading.Text()))
		if era == "" {
			return
		}

		panel.Find(".panel-body tbody tr").Each(func(_ int, row *goquery.Selection) {
			faction := strings.TrimSpace(row.Find("a").First().Text())
			if faction == "" {
				return
			}
			records = append(records, model.AvailabilityRecord{
				EraName:     era,
				FactionName: faction,
			})
		})
	})

	return records, recognized
}

// stripYearRange removes a trailing parenthesized year range from an
// era heading, e.g. "Succession Wars (2781 - 3049)" -> "Succession Wars".
func stripYearRange(s string) string {
	if idx := strings.LastIndex(s, "("); idx > 0 && strings.HasSuffix(s, ")") {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
