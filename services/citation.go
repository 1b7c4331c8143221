package services

import (
	"fmt"
	"strings"

	"speed-review/models"
)

const maxCitedAuthors = 6

// FormatCitation rendert einen Artikel als kompakte Literaturangabe:
// "Autoren (Jahr). Titel. Journal, Band(Heft), Seiten. doi:..."
func FormatCitation(a models.Article) string {
	authors := a.Authors
	authorStr := strings.Join(authors, ", ")
	if len(authors) > maxCitedAuthors {
		authorStr = strings.Join(authors[:maxCitedAuthors], ", ") + " et al."
	}
	if authorStr == "" {
		authorStr = "Unknown Authors"
	}

	year := "n.d."
	if a.PublicationYear != nil && *a.PublicationYear > 0 {
		year = fmt.Sprintf("%d", *a.PublicationYear)
	}

	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = "Untitled"
	}

	parts := []string{fmt.Sprintf("%s (%s). %s.", authorStr, year, strings.TrimSuffix(title, "."))}

	if venue := formatVenue(a); venue != "" {
		parts = append(parts, venue+".")
	}
	if a.DOI != "" {
		parts = append(parts, "doi:"+a.DOI)
	}
	return strings.Join(parts, " ")
}

func formatVenue(a models.Article) string {
	venue := a.Journal
	if venue == "" {
		venue = a.Source
	}
	if a.Volume != "" {
		vol := a.Volume
		if a.Number != "" {
			vol += "(" + a.Number + ")"
		}
		venue = joinNonEmpty(venue, vol)
	}
	if a.Pages != "" {
		venue = joinNonEmpty(venue, a.Pages)
	}
	return venue
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	return a + ", " + b
}
