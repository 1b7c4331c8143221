package providers

import "context"

// Message ist eine ausgehende E-Mail.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer ist das Interface, das jeder Mail-Provider (z.B. Mailjet) implementieren muss.
type Mailer interface {
	// Send verschickt eine einzelne Nachricht.
	Send(ctx context.Context, msg Message) error

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "mailjet").
	Name() string
}

// OpenAccessResolver findet einen frei zugänglichen Volltext-Link zu einer DOI.
type OpenAccessResolver interface {
	GetPDFLink(ctx context.Context, doi string) (string, error)
}
