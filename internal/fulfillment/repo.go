package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mfeldkamp/passform-backend/pkg/db/models"
)

// Repository covers the order-side persistence of the fulfillment flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderWithHistory(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	CreateEvent(ctx context.Context, event *models.OrderEvent) error
	CreateNote(ctx context.Context, note *models.OrderNote) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fulfillment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderWithHistory(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) CreateEvent(ctx context.Context, event *models.OrderEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) CreateNote(ctx context.Context, note *models.OrderNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(note).Error
}
