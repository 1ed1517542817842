package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// Mailer renders a template from the mails directory and delivers it. A
// delivery failure is a hard error for the caller: no token counts as issued
// until the code reached the inbox.
type Mailer interface {
	Send(to, subject, templateName string, data map[string]interface{}) error
}

type smtpMailer struct {
	dialer      *gomail.Dialer
	from        string
	templateDir string
}

func NewSMTPMailer() Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}
	dir := os.Getenv("MAIL_TEMPLATE_DIR")
	if dir == "" {
		dir = "mails"
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(
			os.Getenv("SMTP_HOST"),
			port,
			os.Getenv("SMTP_MAIL"),
			os.Getenv("SMTP_PASSWORD"),
		),
		from:        os.Getenv("SMTP_MAIL"),
		templateDir: dir,
	}
}

func (m *smtpMailer) Send(to, subject, templateName string, data map[string]interface{}) error {
	html, err := RenderTemplate(filepath.Join(m.templateDir, templateName), data)
	if err != nil {
		return fmt.Errorf("render mail template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func RenderTemplate(path string, data map[string]interface{}) (string, error) {
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
