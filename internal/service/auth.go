package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/smerino/gestion/internal/audit"
	"github.com/smerino/gestion/internal/events"
	"github.com/smerino/gestion/internal/hash"
	"github.com/smerino/gestion/internal/logging"
	"github.com/smerino/gestion/internal/mailer"
	"github.com/smerino/gestion/internal/metrics"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/repo"
	"github.com/smerino/gestion/internal/tenantstore"
	"github.com/smerino/gestion/pkg/tokens"
)

// SessionService orchestrates login, rotation, logout and the
// password reset flow against the credential store.
type SessionService struct {
	Repo   repo.GormRepo
	Stores *tenantstore.Manager
	Mail   mailer.Sender
	Events *events.Producer
	Audit  *audit.Recorder

	AccessSecret  []byte
	RefreshSecret []byte

	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	ResetTTL     time.Duration
	ResetBaseURL string
}

type Perfil struct {
	ID            uuid.UUID `json:"id"`
	Nombre        string    `json:"nombre"`
	Email         string    `json:"email"`
	Rol           string    `json:"rol"`
	EmpresaNombre string    `json:"empresa_nombre,omitempty"`
	TenantID      string    `json:"tenant_id,omitempty"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Usuario      Perfil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (s *SessionService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return 15 * time.Minute
}

func (s *SessionService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return 7 * 24 * time.Hour
}

func (s *SessionService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return time.Hour
}

func (s *SessionService) CreateAccessToken(u *models.Usuario, empresaNombre string, exp time.Time) (string, error) {
	tenantID := ""
	if u.EmpresaID != nil {
		tenantID = u.EmpresaID.String()
	}
	claims := tokens.AccessClaims{
		Rol:           u.Rol,
		TenantID:      tenantID,
		Nombre:        u.Nombre,
		EmpresaNombre: empresaNombre,
		Email:         u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.AccessSecret)
}

func (s *SessionService) CreateRefreshToken(usuarioID uuid.UUID, exp time.Time) (string, error) {
	claims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usuarioID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
}

// Login verifies credentials and issues a fresh access/refresh pair.
// Every mismatch (unknown email, wrong password, inactive user or
// empresa) returns the same ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	u, err := s.Repo.FindUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUsuarioNotFound) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Activo {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		return nil, ErrInvalidCredentials
	}

	empresaNombre, err := s.empresaNombreActiva(ctx, u)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
		}
		return nil, err
	}

	if !hash.CheckPassword(u.PasswordHash, password) {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		return nil, ErrInvalidCredentials
	}

	res, err := s.issuePair(ctx, u, empresaNombre)
	if err != nil {
		l.Error("issue_pair_failed", "error", err)
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.publish(ctx, events.EventSesionIniciada, u.ID.String(), res.Usuario.TenantID, nil)
	s.record(ctx, "login", u.ID.String(), res.Usuario.TenantID, "")
	l.Info("login_successful", "usuario_id", u.ID)
	return res, nil
}

// Refresh exchanges a raw refresh token for a new pair, revoking the
// matched row. Strict rotate-on-use: a replayed token always fails.
func (s *SessionService) Refresh(ctx context.Context, rawRefreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(rawRefreshToken, s.RefreshSecret)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	usuarioID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	row, err := s.Repo.FindLiveRefreshToken(ctx, usuarioID, sha256Hex(rawRefreshToken))
	if err != nil {
		if errors.Is(err, repo.ErrRefreshNotFound) {
			l.Warn("refresh_replay_or_unknown", "usuario_id", usuarioID)
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	u, err := s.Repo.GetUsuario(ctx, usuarioID)
	if err != nil || !u.Activo {
		return nil, ErrTokenInvalid
	}
	empresaNombre, err := s.empresaNombreActiva(ctx, u)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	accessExp := time.Now().Add(s.accessTTL())
	accessToken, err := s.CreateAccessToken(u, empresaNombre, accessExp)
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(s.refreshTTL())
	refreshToken, err := s.CreateRefreshToken(u.ID, refreshExp)
	if err != nil {
		return nil, err
	}

	newRow := &models.RefreshToken{
		UsuarioID: u.ID,
		TokenHash: sha256Hex(refreshToken),
		ExpiresAt: refreshExp,
	}
	if err := s.Repo.RotateRefreshToken(ctx, row.ID, newRow); err != nil {
		if errors.Is(err, repo.ErrRefreshNotFound) {
			// Lost the race against a concurrent exchange of the same token.
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	metrics.RefreshRotationsTotal.Inc()
	l.Info("refresh_rotated", "usuario_id", u.ID)
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Usuario:      s.perfil(u, empresaNombre),
	}, nil
}

// Logout is best-effort and idempotent; it never fails the caller.
func (s *SessionService) Logout(ctx context.Context, rawRefreshToken string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if _, err := tokens.RefreshClaimsFromToken(rawRefreshToken, s.RefreshSecret); err != nil {
		l.Debug("logout_with_invalid_token")
		return
	}
	if err := s.Repo.RevokeRefreshByHash(ctx, sha256Hex(rawRefreshToken)); err != nil {
		l.Warn("logout_revoke_failed", "error", err)
		return
	}
	l.Info("logout_successful")
}

func (s *SessionService) issuePair(ctx context.Context, u *models.Usuario, empresaNombre string) (*LoginResult, error) {
	accessExp := time.Now().Add(s.accessTTL())
	accessToken, err := s.CreateAccessToken(u, empresaNombre, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(s.refreshTTL())
	refreshToken, err := s.CreateRefreshToken(u.ID, refreshExp)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.AddRefreshToken(ctx, &models.RefreshToken{
		UsuarioID: u.ID,
		TokenHash: sha256Hex(refreshToken),
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Usuario:      s.perfil(u, empresaNombre),
	}, nil
}

// empresaNombreActiva resolves the user's empresa display name and
// rejects sessions for deactivated empresas. Superadmins have none.
func (s *SessionService) empresaNombreActiva(ctx context.Context, u *models.Usuario) (string, error) {
	if u.EmpresaID == nil {
		return "", nil
	}
	e, err := s.Repo.GetEmpresa(ctx, *u.EmpresaID)
	if err != nil {
		if errors.Is(err, repo.ErrEmpresaNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !e.Activa {
		return "", ErrInvalidCredentials
	}
	return e.Nombre, nil
}

func (s *SessionService) perfil(u *models.Usuario, empresaNombre string) Perfil {
	tenantID := ""
	if u.EmpresaID != nil {
		tenantID = u.EmpresaID.String()
	}
	return Perfil{
		ID:            u.ID,
		Nombre:        u.Nombre,
		Email:         u.Email,
		Rol:           u.Rol,
		EmpresaNombre: empresaNombre,
		TenantID:      tenantID,
	}
}

func (s *SessionService) publish(ctx context.Context, event, key, tenantID string, payload any) {
	if err := s.Events.PublishEvent(ctx, event, key, tenantID, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", event, "error", err)
	}
}

func (s *SessionService) record(ctx context.Context, action, actorID, tenantID, detalle string) {
	if err := s.Audit.Record(ctx, action, actorID, tenantID, detalle); err != nil {
		logging.FromContext(ctx).Warn("audit_record_failed", "action", action, "error", err)
	}
}
