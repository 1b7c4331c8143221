package unpaywall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"speed-review/config"
)

func newFetcher(baseURL, email string) *Fetcher {
	return NewFetcher(&config.Config{UnpaywallBaseURL: baseURL, UnpaywallEmail: email}, zap.NewNop())
}

func TestGetPDFLink(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") != "lib@example.org" {
			t.Errorf("missing email query, got %q", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/10.1000/oa":
			_, _ = w.Write([]byte(`{"is_oa":true,"best_oa_location":{"url":"https://x/landing","url_for_pdf":"https://x/paper.pdf"}}`))
		case "/10.1000/landing":
			_, _ = w.Write([]byte(`{"is_oa":true,"best_oa_location":{"url":"https://x/landing","url_for_pdf":""}}`))
		case "/10.1000/closed":
			_, _ = w.Write([]byte(`{"is_oa":false,"best_oa_location":null}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newFetcher(srv.URL, "lib@example.org")
	cases := map[string]string{
		"10.1000/oa":      "https://x/paper.pdf",
		"10.1000/landing": "https://x/landing",
		"10.1000/closed":  "",
		"10.1000/unknown": "",
	}
	for doi, want := range cases {
		got, err := f.GetPDFLink(context.Background(), doi)
		if err != nil {
			t.Fatalf("GetPDFLink(%s): %v", doi, err)
		}
		if got != want {
			t.Fatalf("GetPDFLink(%s) = %q, want %q", doi, got, want)
		}
	}
}

func TestGetPDFLinkServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newFetcher(srv.URL, "lib@example.org").GetPDFLink(context.Background(), "10.1/x"); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestGetPDFLinkNotConfigured(t *testing.T) {
	t.Parallel()

	if _, err := newFetcher("http://unused", "").GetPDFLink(context.Background(), "10.1/x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
