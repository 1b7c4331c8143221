package mailjet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"speed-review/config"
	"speed-review/providers"
)

var httpClient = &http.Client{Timeout: 20 * time.Second}

// Sender verschickt Mails über die Mailjet Send API v3.1.
type Sender struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

var _ providers.Mailer = (*Sender)(nil)

// NewSender erstellt einen neuen Mailjet-Sender.
func NewSender(cfg *config.Config, logger *zap.Logger) *Sender {
	return &Sender{Config: cfg, Logger: logger, client: httpClient}
}

// Name gibt den Namen des Providers zurück.
func (s *Sender) Name() string {
	return "mailjet"
}

// Send verschickt genau eine Nachricht an msg.To.
func (s *Sender) Send(ctx context.Context, msg providers.Message) error {
	if !s.Config.MailjetEnabled() {
		return fmt.Errorf("mailjet credentials sind nicht konfiguriert")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mailjet: empty recipient")
	}

	body, err := json.Marshal(sendRequest{Messages: []message{{
		From:     address{Email: s.Config.MailFromEmail, Name: s.Config.MailFromName},
		To:       []address{{Email: msg.To}},
		Subject:  msg.Subject,
		TextPart: msg.TextBody,
		HTMLPart: msg.HTMLBody,
	}}})
	if err != nil {
		return err
	}

	url := strings.TrimRight(s.Config.MailjetBaseURL, "/") + "/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.Config.MailjetAPIKey, s.Config.MailjetSecretKey)

	log := s.Logger.With(zap.String("to", msg.To), zap.String("subject", msg.Subject))
	log.Debug("Sende Mail über Mailjet.")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailjet request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailjet request failed with status: %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read mailjet response: %w", err)
	}

	var sr sendResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return fmt.Errorf("decode mailjet response: %w", err)
	}
	for _, m := range sr.Messages {
		if m.Status != "success" {
			var msgs []string
			for _, e := range m.Errors {
				msgs = append(msgs, e.ErrorMessage)
			}
			return fmt.Errorf("mailjet rejected message: %s", strings.Join(msgs, "; "))
		}
	}

	log.Info("Mail über Mailjet verschickt.")
	return nil
}

// LogMailer schreibt Mails nur ins Log. Wird genutzt, wenn keine Mailjet-Keys gesetzt sind.
type LogMailer struct {
	Logger *zap.Logger
}

var _ providers.Mailer = (*LogMailer)(nil)

func (l *LogMailer) Name() string { return "log" }

func (l *LogMailer) Send(_ context.Context, msg providers.Message) error {
	l.Logger.Info("Mail (nicht verschickt, kein Mail-Provider konfiguriert)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.TextBody))
	return nil
}
