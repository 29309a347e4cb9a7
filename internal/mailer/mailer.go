// Package mailer delivers submission notification emails.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"text/template"

	"forgeline/internal/models"
	"forgeline/internal/observability"
)

// Mailer sends a notification for a persisted submission.
type Mailer interface {
	Send(ctx context.Context, submission *models.Submission) error
}

var bodyTemplate = template.Must(template.New("notification").Parse(`New {{.Kind}} submission {{.ConfirmationID}}

Name:    {{.Name}}
Email:   {{.Email}}
{{- if .Phone}}
Phone:   {{.Phone}}
{{- end}}
{{- if .Company}}
Company: {{.Company}}
{{- end}}
Locale:  {{.Locale}}
{{- if eq .Kind "rfq"}}
Material:  {{.Material}}
Process:   {{.Process}}
Quantity:  {{.Quantity}}
Thickness: {{.ThicknessMM}} mm
{{- end}}
{{- if .Attachments}}
Attachments:
{{- range .Attachments}}
  - {{.Filename}} ({{.MediaType}}, {{.SizeBytes}} bytes)
{{- end}}
{{- end}}

Message:
{{.Message}}
`))

// SMTPMailer sends notifications through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	to       []string
}

// NewSMTPMailer creates an SMTP mailer. to accepts a comma separated list.
func NewSMTPMailer(host, port, username, password, from, to string) *SMTPMailer {
	var recipients []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       recipients,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, submission *models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, submission); err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	subject := fmt.Sprintf("[forgeline] New %s submission %s", submission.Kind, submission.ConfirmationID)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, strings.Join(m.to, ", "), subject, body.String())

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, m.to, []byte(msg)); err != nil {
		observability.MailDeliveriesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("send notification mail: %w", err)
	}
	observability.MailDeliveriesTotal.WithLabelValues("ok").Inc()
	return nil
}

// LogMailer writes the rendered notification to the structured log. Used
// in development and test where no SMTP relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, submission *models.Submission) error {
	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, submission); err != nil {
		return err
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("submission notification (mail disabled)",
		slog.String("kind", submission.Kind),
		slog.String("confirmation_id", submission.ConfirmationID),
		slog.String("body", body.String()),
	)
	observability.MailDeliveriesTotal.WithLabelValues("logged").Inc()
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
var _ Mailer = (*LogMailer)(nil)
