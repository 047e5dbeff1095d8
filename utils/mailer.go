package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Mail is one outgoing message. At least one of HTML and Text is set.
type Mail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"welcome": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Welcome to TaskHub!</h2>
    </div>
    <p>Hello {{.Name}},</p>
    <p>Thank you for joining TaskHub. We're excited to have you on board!</p>
    <p>If you have any questions, please don't hesitate to reach out to our support team.</p>
    <div class="footer">
        <p>© {{.Year}} TaskHub. All rights reserved.</p>
    </div>
</body>
</html>`,

	"password_reset": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .button { display: inline-block; padding: 10px 20px; background-color: #9b87f5; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Password Reset</h2>
    </div>
    <p>You requested a password reset for your account.</p>
    <p style="text-align: center;">
        <a href="{{.ResetLink}}" class="button">Reset Password</a>
    </p>
    <p>If you didn't request this, please ignore this email. This link will expire in 1 hour.</p>
    <p>Or copy and paste this link into your browser:<br>
    <small>{{.ResetLink}}</small></p>
    <div class="footer">
        <p>© {{.Year}} TaskHub. All rights reserved.</p>
    </div>
</body>
</html>`,
}

func renderTemplate(name string, data map[string]interface{}) (string, error) {
	content, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", name)
	}
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return "", fmt.Errorf("error parsing template: %w", err)
	}
	data["Year"] = time.Now().Year()

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}

// WelcomeMail builds the greeting sent after registration.
func WelcomeMail(email, name string) (Mail, error) {
	subject := "Welcome to TaskHub"
	html, err := renderTemplate("welcome", map[string]interface{}{"Subject": subject, "Name": name})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      email,
		Subject: subject,
		HTML:    html,
		Text: fmt.Sprintf("Welcome to TaskHub! Hello %s, thank you for joining TaskHub. "+
			"If you have any questions, please reach out to our support team.", name),
	}, nil
}

// PasswordResetMail builds the reset link email for token.
func PasswordResetMail(email, baseURL, token string) (Mail, error) {
	subject := "Password Reset Request"
	link := strings.TrimRight(baseURL, "/") + "/reset-password?token=" + token
	html, err := renderTemplate("password_reset", map[string]interface{}{"Subject": subject, "ResetLink": link})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      email,
		Subject: subject,
		HTML:    html,
		Text: fmt.Sprintf("Password Reset: you requested a password reset. Please visit %s to reset your password. "+
			"If you didn't request this, please ignore this email. This link will expire in 1 hour.", link),
	}, nil
}

// SMTPMailer delivers mail through a single SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers mail and returns the Message-ID it was sent with.
func (m *SMTPMailer) Send(ctx context.Context, mail Mail) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if mail.To == "" || (mail.HTML == "" && mail.Text == "") {
		return "", errors.New("missing required email parameters")
	}

	msg, id := m.build(mail)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("error sending email: %w", err)
	}
	return id, nil
}

func (m *SMTPMailer) build(mail Mail) (*gomail.Message, string) {
	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), mailDomain(m.cfg.FromEmail))

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetHeader("Message-ID", id)
	switch {
	case mail.Text != "" && mail.HTML != "":
		msg.SetBody("text/plain", mail.Text)
		msg.AddAlternative("text/html", mail.HTML)
	case mail.HTML != "":
		msg.SetBody("text/html", mail.HTML)
	default:
		msg.SetBody("text/plain", mail.Text)
	}
	return msg, id
}

func mailDomain(from string) string {
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		return from[i+1:]
	}
	return "localhost"
}
