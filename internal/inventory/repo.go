package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/pagination"
	"github.com/mfeldkamp/passform-backend/pkg/types"
)

// Repository manages store stock and the audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStoreForUpdate(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	UpdateStoreStock(ctx context.Context, storeID uuid.UUID, stock types.SizeChart) error
	CreateAudit(ctx context.Context, audit *models.StockAudit) error
	ListAuditsByStore(ctx context.Context, storeID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockAudit, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStoreForUpdate(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	query := r.db.WithContext(ctx)
	// SQLite (tests) has no row locks; serializable isolation covers it there.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var store models.Store
	if err := query.First(&store, "id = ?", storeID).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) UpdateStoreStock(ctx context.Context, storeID uuid.UUID, stock types.SizeChart) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("stock", stock).Error
}

func (r *repository) CreateAudit(ctx context.Context, audit *models.StockAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *repository) ListAuditsByStore(ctx context.Context, storeID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockAudit, error) {
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var audits []models.StockAudit
	if err := query.Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}
