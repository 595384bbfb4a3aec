package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/models"
	"gorm.io/gorm"
)

// AliasRepository est une interface qui définit les méthodes d'accès aux alias.
type AliasRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Alias, error)
	Create(ctx context.Context, alias *models.Alias) error
	Deactivate(ctx context.Context, code string, at time.Time) error
	MarkInactive(ctx context.Context, id uint, reason models.InactiveReason, at time.Time) (bool, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, page, perPage int, isActive *bool) ([]models.Alias, int64, error)
}

// GormAliasRepository est l'implémentation de AliasRepository utilisant GORM.
type GormAliasRepository struct {
	db *gorm.DB
}

// NewAliasRepository crée et retourne une nouvelle instance de GormAliasRepository.
func NewAliasRepository(db *gorm.DB) *GormAliasRepository {
	return &GormAliasRepository{db: db}
}

// FindByCode returns the alias with that exact code, active or not.
func (r *GormAliasRepository) FindByCode(ctx context.Context, code string) (*models.Alias, error) {
	var alias models.Alias
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&alias).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrAliasNotFound
		}
		return nil, customerrors.ErrStoreFault{Op: "find alias", Err: err}
	}
	return &alias, nil
}

// Create inserts alias. The unique index on code decides conflicts.
func (r *GormAliasRepository) Create(ctx context.Context, alias *models.Alias) error {
	if err := r.db.WithContext(ctx).Create(alias).Error; err != nil {
		if isDuplicateKey(err) {
			return customerrors.ErrAliasConflict
		}
		return customerrors.ErrStoreFault{Op: "create alias", Err: err}
	}
	return nil
}

// Deactivate flips an active alias to inactive. Inactive aliases are left as they are.
func (r *GormAliasRepository) Deactivate(ctx context.Context, code string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Alias{}).
		Where("code = ? AND is_active = ?", code, true).
		Updates(inactiveColumns(models.ReasonDeactivated, at))
	if res.Error != nil {
		return customerrors.ErrStoreFault{Op: "deactivate alias", Err: res.Error}
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Alias{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return customerrors.ErrStoreFault{Op: "deactivate alias", Err: err}
	}
	if count == 0 {
		return customerrors.ErrAliasNotFound
	}
	return nil
}

// MarkInactive flips alias id to inactive with reason if it is still active.
// It reports whether this call performed the transition.
func (r *GormAliasRepository) MarkInactive(ctx context.Context, id uint, reason models.InactiveReason, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Alias{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(inactiveColumns(reason, at))
	if res.Error != nil {
		return false, customerrors.ErrStoreFault{Op: "mark alias inactive", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

// DeactivateExpired flips every active alias whose expiry is before now.
func (r *GormAliasRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Alias{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Updates(inactiveColumns(models.ReasonExpired, now))
	if res.Error != nil {
		return 0, customerrors.ErrStoreFault{Op: "deactivate expired aliases", Err: res.Error}
	}
	return res.RowsAffected, nil
}

// List returns one page of aliases in insertion order and the total matching the filter.
func (r *GormAliasRepository) List(ctx context.Context, page, perPage int, isActive *bool) ([]models.Alias, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Alias{})
		if isActive != nil {
			q = q.Where("is_active = ?", *isActive)
		}
		return q
	}

	if perPage < 1 {
		return nil, 0, customerrors.ErrInvalidPagination
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, customerrors.ErrStoreFault{Op: "count aliases", Err: err}
	}

	aliases := []models.Alias{}
	// compare page numbers, not offsets: (page-1)*perPage can overflow
	pages := (total + int64(perPage) - 1) / int64(perPage)
	if page < 1 || int64(page-1) >= pages {
		return aliases, total, nil
	}
	offset := (page - 1) * perPage
	if err := query().Order("id ASC").Offset(offset).Limit(perPage).Find(&aliases).Error; err != nil {
		return nil, 0, customerrors.ErrStoreFault{Op: "list aliases", Err: err}
	}
	return aliases, total, nil
}

func inactiveColumns(reason models.InactiveReason, at time.Time) map[string]any {
	return map[string]any{
		"is_active":       false,
		"inactive_reason": string(reason),
		"deactivated_at":  at.UTC(),
	}
}

// isDuplicateKey recognises unique violations, translated or not.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
