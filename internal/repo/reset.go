package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/models"
)

// ReplaceResetToken drops any previous reset rows for the user before
// inserting the new one. Latest token wins.
func (r *GormRepo) ReplaceResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", t.UsuarioID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *GormRepo) FindResetToken(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ConsumeResetToken applies the password change, burns the token and
// kills every outstanding refresh token for the user. All or nothing:
// burning is conditional on used = false, so concurrent consumes of
// the same token leave one winner and roll the loser back.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, t *models.PasswordResetToken, usuarioID uuid.UUID, newPasswordHash string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		burn := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used = ?", t.ID, false).
			Update("used", true)
		if burn.Error != nil {
			return burn.Error
		}
		if burn.RowsAffected == 0 {
			return ErrResetUsed
		}
		res := tx.Model(&models.Usuario{}).
			Where("id = ?", usuarioID).
			Update("password_hash", newPasswordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUsuarioNotFound
		}
		return r.revokeAllRefreshForUsuario(tx, usuarioID)
	})
}
