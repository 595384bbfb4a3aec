package repository

import (
	"context"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/models"
	"gorm.io/gorm"
)

// ClickRepository est une interface qui définit les méthodes d'accès aux clics.
type ClickRepository interface {
	CreateClick(ctx context.Context, click *models.Click) error
	CreateClickIfActive(ctx context.Context, click *models.Click) (bool, error)
	CountClicksByAliasID(ctx context.Context, aliasID uint) (int64, error)
	AggregateWindows(ctx context.Context, hourSince, daySince time.Time) ([]models.AliasStats, error)
}

// GormClickRepository est l'implémentation de l'interface ClickRepository utilisant GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository crée et retourne une nouvelle instance de GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClick insère un nouvel enregistrement de clic dans la base de données.
func (r *GormClickRepository) CreateClick(ctx context.Context, click *models.Click) error {
	if err := r.db.WithContext(ctx).Omit("Alias").Create(click).Error; err != nil {
		return customerrors.ErrClickRecordingFailed{AliasID: click.AliasID, Err: err}
	}
	return nil
}

// CreateClickIfActive records click only while its alias is still active, in a
// single statement, and reports whether a row was inserted.
func (r *GormClickRepository) CreateClickIfActive(ctx context.Context, click *models.Click) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`INSERT INTO clicks (alias_id, occurred_at, user_agent, ip_address)
		SELECT id, ?, ?, ? FROM aliases WHERE id = ? AND is_active = ?`,
		click.OccurredAt.UTC(), click.UserAgent, click.IPAddress, click.AliasID, true)
	if res.Error != nil {
		return false, customerrors.ErrClickRecordingFailed{AliasID: click.AliasID, Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

// CountClicksByAliasID compte le nombre total de clics pour un alias donné.
func (r *GormClickRepository) CountClicksByAliasID(ctx context.Context, aliasID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Click{}).Where("alias_id = ?", aliasID).Count(&count).Error; err != nil {
		return 0, customerrors.ErrStoreFault{Op: "count clicks", Err: err}
	}
	return count, nil
}

// AggregateWindows counts, for every alias including those never clicked, the
// clicks at or after hourSince and daySince. Rows are ordered by the day count,
// highest first, then by alias creation order.
func (r *GormClickRepository) AggregateWindows(ctx context.Context, hourSince, daySince time.Time) ([]models.AliasStats, error) {
	stats := []models.AliasStats{}
	err := r.db.WithContext(ctx).
		Table("aliases").
		Select(`aliases.code AS code, aliases.target_url AS target_url,
			COALESCE(SUM(CASE WHEN clicks.occurred_at >= ? THEN 1 ELSE 0 END), 0) AS last_hour_clicks,
			COALESCE(SUM(CASE WHEN clicks.occurred_at >= ? THEN 1 ELSE 0 END), 0) AS last_day_clicks`,
			hourSince.UTC(), daySince.UTC()).
		Joins("LEFT JOIN clicks ON clicks.alias_id = aliases.id").
		Group("aliases.id, aliases.code, aliases.target_url").
		Order("last_day_clicks DESC, aliases.id ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, customerrors.ErrStoreFault{Op: "aggregate clicks", Err: err}
	}
	return stats, nil
}
