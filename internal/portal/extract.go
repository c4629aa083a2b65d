package portal

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bachelor-sync/internal/domain"
)

// cardSelector matches the program cards across the portal's markup
// variants. The portal has shipped all three shapes at some point.
const cardSelector = `div.ProgramCard, article.program-card, div[data-role="ProgramCard"]`

// extractPrograms pulls RawProgram records out of one listing page.
// A page with no cards is a valid (empty) result, not an error.
func extractPrograms(body []byte, baseURL string, page int, scrapedAt time.Time) ([]domain.RawProgram, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var records []domain.RawProgram
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		r := domain.RawProgram{
			Title:       text(card.Find("h3, h2, a.title").First()),
			Institution: text(card.Find("a.university, span.institution").First()),
			DegreeLevel: text(card.Find("span.degree, div.degree").First()),
			RawDuration: text(card.Find("span.duration, div.duration").First()),
			RawLanguage: text(card.Find("span.language, div.language").First()),
			RawTuition:  text(card.Find("span.tuition, div.fee").First()),
			Page:        page,
			Position:    i,
			ScrapedAt:   scrapedAt,
		}

		loc := card.Find("span.location, div.location").First()
		r.RawLocation = text(loc)
		if country, ok := loc.Attr("data-country"); ok && r.RawLocation != "" && !strings.Contains(r.RawLocation, ",") {
			r.RawLocation = r.RawLocation + ", " + country
		}

		// cards for bachelor searches often omit the level
		if r.DegreeLevel == "" {
			r.DegreeLevel = domain.DegreeBachelor
		}

		// prefer the study link over e.g. the institution link
		link := card.Find(`a[href*="/studies/"]`).First()
		if link.Length() == 0 {
			link = card.Find("a[href]").First()
		}
		if href, ok := link.Attr("href"); ok {
			if u, err := url.Parse(href); err == nil {
				r.URL = base.ResolveReference(u).String()
			}
		}

		records = append(records, r)
	})

	return records, nil
}

func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
