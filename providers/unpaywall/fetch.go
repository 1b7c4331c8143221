package unpaywall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"speed-review/config"
	"speed-review/providers"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ErrNotConfigured wird geliefert, wenn UNPAYWALL_EMAIL fehlt.
var ErrNotConfigured = errors.New("unpaywall email ist nicht konfiguriert")

// Response repräsentiert die JSON-Antwort der Unpaywall-API.
type Response struct {
	IsOA           bool `json:"is_oa"`
	BestOALocation *struct {
		URL       string `json:"url"`
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}

// Fetcher kapselt die Logik für Unpaywall.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

var _ providers.OpenAccessResolver = (*Fetcher)(nil)

// NewFetcher erstellt einen neuen Unpaywall-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, client: httpClient}
}

// GetPDFLink holt einen freien Volltext-Link via Unpaywall anhand der DOI.
// Ohne Open-Access-Version ist das Ergebnis "" ohne Fehler.
func (f *Fetcher) GetPDFLink(ctx context.Context, doi string) (string, error) {
	if f.Config.UnpaywallEmail == "" {
		return "", ErrNotConfigured
	}
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return "", nil
	}

	endpoint := fmt.Sprintf("%s/%s?email=%s", strings.TrimRight(f.Config.UnpaywallBaseURL, "/"), url.PathEscape(doi), url.QueryEscape(f.Config.UnpaywallEmail))
	log := f.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Unpaywall API auf.")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Debug("DOI bei Unpaywall unbekannt.")
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unpaywall request failed with status: %d", resp.StatusCode)
	}

	var ur Response
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", err
	}
	if ur.BestOALocation == nil {
		log.Debug("Kein Open-Access-Link in Unpaywall-Antwort gefunden.")
		return "", nil
	}
	if ur.BestOALocation.URLForPDF != "" {
		log.Info("PDF-Link über Unpaywall gefunden.")
		return ur.BestOALocation.URLForPDF, nil
	}
	return ur.BestOALocation.URL, nil
}
