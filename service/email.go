package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/models"
	"taskhub/store"
	"taskhub/utils"
)

// PasswordResetTTL is how long a reset link stays valid.
const PasswordResetTTL = time.Hour

// PasswordResetSent is returned for every accepted reset request, whether or
// not the address belongs to an account.
const PasswordResetSent = "If an account with that email exists, a password reset link has been sent."

// SendEmail delivers an arbitrary message on behalf of a signed-in user.
func (s *Service) SendEmail(ctx context.Context, mail utils.Mail) (string, error) {
	mail.To = strings.TrimSpace(mail.To)
	if mail.To == "" || strings.TrimSpace(mail.Subject) == "" || (mail.HTML == "" && mail.Text == "") {
		return "", badRequest("missing required fields")
	}
	id, err := s.mailer.Send(ctx, mail)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "error sending email", Err: err}
	}
	return id, nil
}

func (s *Service) SendWelcome(ctx context.Context, email, name string) (string, error) {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" || name == "" {
		return "", badRequest("email and name are required")
	}
	mail, err := utils.WelcomeMail(email, name)
	if err != nil {
		return "", unavailable(err)
	}
	return s.SendEmail(ctx, mail)
}

// RequestPasswordReset issues a reset link when email belongs to an account.
// Only a missing email is reported; every other outcome looks like success.
func (s *Service) RequestPasswordReset(ctx context.Context, email, baseURL string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", badRequest("email is required")
	}

	if err := s.sendPasswordReset(ctx, email, baseURL); err != nil {
		s.log.WithError(err).Warn("password reset not sent")
	}
	return PasswordResetSent, nil
}

func (s *Service) sendPasswordReset(ctx context.Context, email, baseURL string) error {
	user, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(PasswordResetTTL),
	}
	if err := s.repo.CreatePasswordReset(ctx, reset); err != nil {
		return err
	}
	mail, err := utils.PasswordResetMail(user.Email, baseURL, reset.Token)
	if err != nil {
		return err
	}
	_, err = s.mailer.Send(ctx, mail)
	return err
}

// ResetPassword redeems a reset token. Unknown, used and expired tokens are
// all rejected the same way.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return badRequest("token is required")
	}
	if len(password) < 6 {
		return validation("password must be at least 6 characters")
	}

	reset, err := s.repo.PasswordResetByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return badRequest("invalid or expired reset token")
	}
	if err != nil {
		return unavailable(err)
	}
	now := s.now()
	if !reset.Usable(now) {
		return badRequest("invalid or expired reset token")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return unavailable(err)
	}
	err = s.repo.RedeemPasswordReset(ctx, reset, hash, now)
	if errors.Is(err, store.ErrNotFound) {
		return badRequest("invalid or expired reset token")
	}
	if err != nil {
		return unavailable(err)
	}
	return nil
}
