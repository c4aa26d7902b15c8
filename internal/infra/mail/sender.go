package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

//go:embed templates/notification.html
var notificationTemplate string

var notificationTmpl = template.Must(template.New("notification").Parse(notificationTemplate))

func NewEmailSender(host string, port int, user, password, from, baseURL string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		BaseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Enabled reports whether an SMTP host is configured.
func (s *EmailSender) Enabled() bool {
	return s != nil && s.Host != ""
}

func (s *EmailSender) SendNotification(to, subject, message, link string) error {
	body, err := RenderNotification(message, s.absoluteLink(link))
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func RenderNotification(message, link string) (string, error) {
	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, NotificationEmailData{Message: message, Link: link}); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) absoluteLink(link string) string {
	if link == "" || s.BaseURL == "" || strings.HasPrefix(link, "http") {
		return link
	}
	return s.BaseURL + link
}
