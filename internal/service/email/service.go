// internal/service/email/service.go
package email

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(to, subject, bodyHTML string) error
}

// EmailSender handles outgoing emails via SMTP.
type EmailSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewEmailSender creates a new SMTP email sender. Port 465 uses implicit TLS,
// anything else negotiates STARTTLS.
func NewEmailSender(host, port, user, pass, from, fromName string) (*EmailSender, error) {
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp port %q: %w", port, err)
	}
	if from == "" {
		from = user
	}

	d := gomail.NewDialer(host, p, user, pass)
	d.SSL = p == 465

	return &EmailSender{
		dialer:   d,
		from:     from,
		fromName: fromName,
	}, nil
}

// Send sends an email with a subject and body (HTML supported).
func (e *EmailSender) Send(to, subject, bodyHTML string) error {
	m := e.buildMessage(to, subject, bodyHTML)
	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail failed: %w", err)
	}
	return nil
}

func (e *EmailSender) buildMessage(to, subject, bodyHTML string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.from, e.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainText(bodyHTML))
	m.AddAlternative("text/html", buildHTMLTemplate(bodyHTML))
	return m
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) Send(string, string, string) error { return nil }

// plainText strips tags for the text/plain alternative.
func plainText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// buildHTMLTemplate wraps a given body into the branded email layout.
func buildHTMLTemplate(content string) string {
	header := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8" />
		<title>ContentHub</title>
		<style>
			body { font-family: Arial, sans-serif; background-color: #f6f8fa; padding: 30px; }
			.container { max-width: 600px; margin: auto; background: #fff; border-radius: 10px; overflow: hidden; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
			.header { background: #1f3a5f; color: white; text-align: center; padding: 20px; font-size: 22px; font-weight: bold; }
			.footer { background: #f1f1f1; color: #555; text-align: center; padding: 15px; font-size: 13px; }
			.body { padding: 25px; color: #333; line-height: 1.6; }
		</style>
	</head>
	<body>
	<div class="container">
		<div class="header">ContentHub</div>
		<div class="body">
	`

	footer := `
		</div>
		<div class="footer">
			<p>ContentHub. All rights reserved.</p>
		</div>
	</div>
	</body>
	</html>
	`

	return header + strings.TrimSpace(content) + footer
}
