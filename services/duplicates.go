package services

import (
	"context"
	"strings"

	"speed-review/storage"
)

// IsDuplicate meldet, ob bereits ein Artikel mit exakt gleichem Titel oder gleicher DOI existiert.
// Der Vergleich ist case-sensitiv und ohne Normalisierung; eine leere DOI matcht nie.
// Submit entfernt vorher führende und abschließende Leerzeichen aus Titel und DOI,
// " Foo " gilt also als Duplikat von "Foo".
func IsDuplicate(ctx context.Context, store storage.ArticleStore, title, doi string) (bool, error) {
	matches, err := store.MatchTitleOrDOI(ctx, title, strings.TrimSpace(doi))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}
