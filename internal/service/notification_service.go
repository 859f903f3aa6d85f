package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/staplewise/marketplace-backend/internal/mailer"
	"github.com/staplewise/marketplace-backend/internal/model"
)

type NotificationService interface {
	SendPasswordReset(ctx context.Context, u *model.User, token string) error
}

type notificationService struct {
	mail         mailer.Mailer
	resetURLBase string
	resetTTL     time.Duration
}

func NewNotificationService(mail mailer.Mailer, resetURLBase string, resetTTL time.Duration) NotificationService {
	return &notificationService{mail: mail, resetURLBase: resetURLBase, resetTTL: resetTTL}
}

var resetEmailTmpl = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #2563eb;">StapleWise</h1>
  <h2>Hello {{.Name}},</h2>
  <p>We received a request to reset the password for your StapleWise account. If you didn't make this request, you can ignore this email.</p>
  <p><a href="{{.Link}}" style="background-color: #2563eb; color: #ffffff; padding: 12px 30px; text-decoration: none; border-radius: 6px;">Reset Password</a></p>
  <p><strong>Important:</strong> this link expires in {{.Expiry}}.</p>
  <p>If the button doesn't work, paste this link into your browser:<br>{{.Link}}</p>
</div>`))

func (s *notificationService) SendPasswordReset(ctx context.Context, u *model.User, token string) error {
	link := s.resetLink(token)
	data := struct {
		Name   string
		Link   string
		Expiry string
	}{Name: u.Name, Link: link, Expiry: humanDuration(s.resetTTL)}

	var html bytes.Buffer
	if err := resetEmailTmpl.Execute(&html, data); err != nil {
		return err
	}
	text := fmt.Sprintf("Hello %s,\n\nReset your StapleWise password here: %s\nThe link expires in %s.\n", u.Name, link, data.Expiry)
	return s.mail.Send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "Password Reset Request - StapleWise",
		HTML:    html.String(),
		Text:    text,
	})
}

func (s *notificationService) resetLink(token string) string {
	sep := "?"
	if strings.Contains(s.resetURLBase, "?") {
		sep = "&"
	}
	return s.resetURLBase + sep + "token=" + url.QueryEscape(token)
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	default:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
}
