package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/models"
)

func (r *GormRepo) GetEmpresa(ctx context.Context, id uuid.UUID) (*models.Empresa, error) {
	var e models.Empresa
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmpresaNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *GormRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Empresa{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// CreateEmpresaConAdmin inserts the empresa and its initial admin user
// as one atomic unit.
func (r *GormRepo) CreateEmpresaConAdmin(ctx context.Context, e *models.Empresa, admin *models.Usuario) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return r.createUsuario(tx, admin)
	})
}
