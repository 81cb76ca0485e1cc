package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"time"

	"github.com/smerino/gestion/internal/events"
	"github.com/smerino/gestion/internal/hash"
	"github.com/smerino/gestion/internal/logging"
	"github.com/smerino/gestion/internal/metrics"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/repo"
)

// RequestPasswordReset stores a hashed single-use token and mails the
// raw value. Unknown or inactive emails are silently ignored so the
// endpoint cannot be used to enumerate accounts.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")

	email = NormalizeEmail(email)
	if email == "" {
		return nil
	}

	u, err := s.Repo.FindUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUsuarioNotFound) {
			l.Info("reset_requested_unknown_email")
			return nil
		}
		return err
	}
	if !u.Activo {
		return nil
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}

	row := &models.PasswordResetToken{
		UsuarioID: u.ID,
		TokenHash: sha256Hex(raw),
		ExpiresAt: time.Now().Add(s.resetTTL()),
	}
	if err := s.Repo.ReplaceResetToken(ctx, row); err != nil {
		return err
	}

	resetURL := s.ResetBaseURL + "/reset?token=" + url.QueryEscape(raw)
	if s.Mail != nil {
		to := u.Email
		go func() {
			if err := s.Mail.SendPasswordReset(to, resetURL); err != nil {
				l.Error("reset_email_failed", "error", err)
				return
			}
			l.Info("reset_email_sent")
		}()
	}

	s.record(ctx, "password.reset_solicitado", u.ID.String(), tenantIDOf(u), "")
	return nil
}

// ResetPassword consumes a raw reset token. On success the password
// changes, the token burns and every refresh token for the user is
// revoked, forcing re-login everywhere.
func (s *SessionService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if rawToken == "" || newPassword == "" {
		return ErrValidation
	}

	t, err := s.Repo.FindResetToken(ctx, sha256Hex(rawToken))
	if err != nil {
		if errors.Is(err, repo.ErrResetNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if time.Now().After(t.ExpiresAt) {
		return ErrTokenExpired
	}
	if t.Used {
		return ErrTokenUsed
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.ConsumeResetToken(ctx, t, t.UsuarioID, pwHash); err != nil {
		if errors.Is(err, repo.ErrResetUsed) {
			return ErrTokenUsed
		}
		return err
	}

	metrics.PasswordResetsTotal.Inc()
	s.publish(ctx, events.EventPasswordReseteado, t.UsuarioID.String(), "", nil)
	s.record(ctx, "password.reseteado", t.UsuarioID.String(), "", "")
	l.Info("password_reset_completed", "usuario_id", t.UsuarioID)
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func tenantIDOf(u *models.Usuario) string {
	if u.EmpresaID == nil {
		return ""
	}
	return u.EmpresaID.String()
}
