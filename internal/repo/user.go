package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/models"
)

func (r *GormRepo) FindUsuarioByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	var u models.Usuario
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUsuarioNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUsuario(ctx context.Context, id uuid.UUID) (*models.Usuario, error) {
	var u models.Usuario
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUsuarioNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUsuario inserts u unless the email is already registered
// anywhere in the system. Email uniqueness is global, not per tenant.
func (r *GormRepo) CreateUsuario(ctx context.Context, u *models.Usuario) error {
	return r.createUsuario(r.DB.WithContext(ctx), u)
}

func (r *GormRepo) createUsuario(db *gorm.DB, u *models.Usuario) error {
	tx := db.Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

func (r *GormRepo) ListUsuarios(ctx context.Context, empresaID uuid.UUID) ([]models.Usuario, error) {
	var out []models.Usuario
	err := r.DB.WithContext(ctx).
		Where("empresa_id = ?", empresaID).
		Order("created_at").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) DeactivateUsuario(ctx context.Context, id, empresaID uuid.UUID) error {
	tx := r.DB.WithContext(ctx).Model(&models.Usuario{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Update("activo", false)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUsuarioNotFound
	}
	return nil
}

// DeleteUsuario hard-deletes the user and cascades to its token rows.
func (r *GormRepo) DeleteUsuario(ctx context.Context, id, empresaID uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("usuario_id = ?", id).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND empresa_id = ?", id, empresaID).Delete(&models.Usuario{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUsuarioNotFound
		}
		return nil
	})
}
