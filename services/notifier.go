package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/providers"
	"speed-review/storage"
)

var htmlMails = htmltemplate.Must(htmltemplate.New("mail").Parse(`
{{define "submitted"}}<p>Hello{{if .Name}} {{.Name}}{{end}},</p>
<p>your article <strong>{{.Article.Title}}</strong> was submitted to SPEED.</p>
<p>Submission ID: <code>{{.Article.ID}}</code></p>
<p>Track its status at <a href="{{.Link}}">{{.Link}}</a>.</p>{{end}}
{{define "moderation_queue"}}<p>A new article is waiting for moderation:</p>
<p><strong>{{.Article.Title}}</strong>{{if .Article.RepeatFlag}} (possible duplicate){{end}}</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
{{define "analysis_queue"}}<p>An article was approved by a moderator and is ready for analysis:</p>
<p><strong>{{.Article.Title}}</strong></p>
<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
{{define "rejected"}}<p>Hello{{if .Name}} {{.Name}}{{end}},</p>
<p>your article <strong>{{.Article.Title}}</strong> was not accepted.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}{{end}}
{{define "published"}}<p>Hello{{if .Name}} {{.Name}}{{end}},</p>
<p>your article <strong>{{.Article.Title}}</strong> has been published.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
{{define "digest"}}<p>{{.Count}} article(s) are waiting in the {{.Queue}} queue.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
`))

var textMails = texttemplate.Must(texttemplate.New("mail").Parse(`
{{define "submitted"}}Your article "{{.Article.Title}}" was submitted to SPEED. Submission ID: {{.Article.ID}}. Track it at {{.Link}}{{end}}
{{define "moderation_queue"}}New article waiting for moderation: "{{.Article.Title}}"{{if .Article.RepeatFlag}} (possible duplicate){{end}}. {{.Link}}{{end}}
{{define "analysis_queue"}}Article ready for analysis: "{{.Article.Title}}". {{.Link}}{{end}}
{{define "rejected"}}Your article "{{.Article.Title}}" was not accepted.{{if .Reason}} Reason: {{.Reason}}{{end}}{{end}}
{{define "published"}}Your article "{{.Article.Title}}" has been published: {{.Link}}{{end}}
{{define "digest"}}{{.Count}} article(s) are waiting in the {{.Queue}} queue. {{.Link}}{{end}}
`))

var mailSubjects = map[string]string{
	"submitted":        "SPEED: submission received",
	"moderation_queue": "SPEED: new article awaiting moderation",
	"analysis_queue":   "SPEED: article ready for analysis",
	"rejected":         "SPEED: your submission was not accepted",
	"published":        "SPEED: your article has been published",
	"digest":           "SPEED: articles waiting for review",
}

type mailData struct {
	Article models.Article
	Name    string
	Link    string
	Reason  string
	Count   int64
	Queue   string
}

func renderMail(name, to string, data mailData) (providers.Message, error) {
	var html, text bytes.Buffer
	if err := htmlMails.ExecuteTemplate(&html, name, data); err != nil {
		return providers.Message{}, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := textMails.ExecuteTemplate(&text, name, data); err != nil {
		return providers.Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	return providers.Message{
		To:       to,
		Subject:  mailSubjects[name],
		HTMLBody: strings.TrimSpace(html.String()),
		TextBody: strings.TrimSpace(text.String()),
	}, nil
}

// Notifier verschickt die Benachrichtigungen des Review-Workflows.
// Alle Methoden kehren sofort zurück; Versand und Empfängersuche laufen über den Dispatcher.
type Notifier struct {
	Roles      storage.RoleStore
	Mailer     providers.Mailer
	Dispatcher *Dispatcher
	Logger     *zap.Logger
	BaseURL    string
}

// NewNotifier erstellt einen neuen Notifier.
func NewNotifier(roles storage.RoleStore, mailer providers.Mailer, dispatcher *Dispatcher, baseURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		Roles:      roles,
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Logger:     logger,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (n *Notifier) articleLink(id string) string {
	return fmt.Sprintf("%s/articles/%s", n.BaseURL, id)
}

// ArticleSubmitted bestätigt dem Einreicher den Eingang und informiert alle Moderatoren.
func (n *Notifier) ArticleSubmitted(article models.Article) {
	data := mailData{Article: article, Name: article.SubmitterName, Link: n.articleLink(article.ID)}
	n.Dispatcher.Go("notify_submitted", func(ctx context.Context) error {
		var errs []error
		if article.SubmitterEmail != "" {
			errs = append(errs, n.send(ctx, "submitted", article.SubmitterEmail, data))
		}
		errs = append(errs, n.sendToRole(ctx, models.RoleModerator, "moderation_queue", data))
		return errors.Join(errs...)
	})
}

// ArticleApprovedByModerator informiert alle Analysten.
func (n *Notifier) ArticleApprovedByModerator(article models.Article) {
	data := mailData{Article: article, Link: n.articleLink(article.ID)}
	n.Dispatcher.Go("notify_analysis_queue", func(ctx context.Context) error {
		return n.sendToRole(ctx, models.RoleAnalyst, "analysis_queue", data)
	})
}

// ArticleRejected informiert den Einreicher, ggf. mit Begründung.
func (n *Notifier) ArticleRejected(article models.Article, reason string) {
	if article.SubmitterEmail == "" {
		return
	}
	data := mailData{Article: article, Name: article.SubmitterName, Reason: reason}
	n.Dispatcher.Go("notify_rejected", func(ctx context.Context) error {
		return n.send(ctx, "rejected", article.SubmitterEmail, data)
	})
}

// ArticlePublished informiert den Einreicher mit Link auf den Artikel.
func (n *Notifier) ArticlePublished(article models.Article) {
	if article.SubmitterEmail == "" {
		return
	}
	data := mailData{Article: article, Name: article.SubmitterName, Link: n.articleLink(article.ID)}
	n.Dispatcher.Go("notify_published", func(ctx context.Context) error {
		return n.send(ctx, "published", article.SubmitterEmail, data)
	})
}

// QueueDigest erinnert alle Inhaber von role an count wartende Artikel.
func (n *Notifier) QueueDigest(role models.RoleName, count int64) {
	queue := "moderation"
	path := "/moderation/articles"
	if role == models.RoleAnalyst {
		queue = "analysis"
		path = "/analysis/articles"
	}
	data := mailData{Count: count, Queue: queue, Link: n.BaseURL + path}
	n.Dispatcher.Go("notify_digest", func(ctx context.Context) error {
		return n.sendToRole(ctx, role, "digest", data)
	})
}

func (n *Notifier) sendToRole(ctx context.Context, role models.RoleName, name string, data mailData) error {
	emails, err := n.Roles.RoleEmails(ctx, role)
	if err != nil {
		return fmt.Errorf("lookup %s recipients: %w", role, err)
	}
	if len(emails) == 0 {
		n.Logger.Warn("Keine Empfänger für Rolle gefunden", zap.String("role", string(role)), zap.String("mail", name))
		return nil
	}
	var errs []error
	for _, email := range emails {
		errs = append(errs, n.send(ctx, name, email, data))
	}
	return errors.Join(errs...)
}

func (n *Notifier) send(ctx context.Context, name, to string, data mailData) error {
	msg, err := renderMail(name, to, data)
	if err != nil {
		notificationsSent.WithLabelValues("error").Inc()
		return err
	}
	if err := n.Mailer.Send(ctx, msg); err != nil {
		notificationsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("%s mail to %s via %s: %w", name, to, n.Mailer.Name(), err)
	}
	notificationsSent.WithLabelValues("ok").Inc()
	return nil
}
