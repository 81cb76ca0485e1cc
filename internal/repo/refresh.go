package repo

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/models"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// FindLiveRefreshToken loads the unrevoked, unexpired rows for the
// subject and picks the one matching tokenHash with a constant-time
// compare. There is deliberately no equality query on the hash here.
func (r *GormRepo) FindLiveRefreshToken(ctx context.Context, usuarioID uuid.UUID, tokenHash string) (*models.RefreshToken, error) {
	var rows []models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("usuario_id = ? AND revoked = ? AND expires_at > ?", usuarioID, false, time.Now()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if subtle.ConstantTimeCompare([]byte(rows[i].TokenHash), []byte(tokenHash)) == 1 {
			return &rows[i], nil
		}
	}
	return nil, ErrRefreshNotFound
}

// RotateRefreshToken revokes the old row and inserts the replacement
// in a single transaction. The revocation predicate includes the live
// conditions, so two exchanges racing on the same row see exactly one
// winner: the loser's update matches zero rows after the winner's
// commit.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldID uint, newRow *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ? AND expires_at > ?", oldID, false, time.Now()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefreshNotFound
		}
		return tx.Create(newRow).Error
	})
}

// RevokeRefreshByHash is the logout path; revoking an already revoked
// or unknown token is not an error.
func (r *GormRepo) RevokeRefreshByHash(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeAllRefreshForUsuario(ctx context.Context, usuarioID uuid.UUID) error {
	return r.revokeAllRefreshForUsuario(r.DB.WithContext(ctx), usuarioID)
}

func (r *GormRepo) revokeAllRefreshForUsuario(db *gorm.DB, usuarioID uuid.UUID) error {
	return db.Model(&models.RefreshToken{}).
		Where("usuario_id = ? AND revoked = ?", usuarioID, false).
		Update("revoked", true).Error
}
