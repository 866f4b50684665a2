package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mfeldkamp/passform-backend/internal/sizing"
	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
	pkgerrors "github.com/mfeldkamp/passform-backend/pkg/errors"
	"github.com/mfeldkamp/passform-backend/pkg/metrics"
	"github.com/mfeldkamp/passform-backend/pkg/pagination"
	"github.com/mfeldkamp/passform-backend/pkg/types"
)

var (
	// ErrNoStoreStock is returned when the store carries no stock catalog at all.
	ErrNoStoreStock = pkgerrors.New(pkgerrors.CodeStateConflict, "store has no stock catalog")
	// ErrNoMatchedSize is returned when no stock entry yields a usable length.
	ErrNoMatchedSize = pkgerrors.New(pkgerrors.CodeStateConflict, "no stock size matches the target length")
	// ErrOutOfStock is returned only when the oversell policy rejects
	// reservations against an exhausted size.
	ErrOutOfStock = pkgerrors.New(pkgerrors.CodeStateConflict, "matched size is out of stock")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Policy tunes reservation behavior. With ClampOversell set (the
// historical behavior) a reservation against an exhausted size records a
// zero-delta sale instead of failing.
type Policy struct {
	ClampOversell bool
}

// ReserveInput identifies the store, the target length and the
// references stamped onto the audit record.
type ReserveInput struct {
	StoreID        uuid.UUID
	TargetLengthMM float64
	PartnerID      *uuid.UUID
	CustomerID     *uuid.UUID
	OrderID        *uuid.UUID
}

// Reservation reports the outcome of a successful reservation.
type Reservation struct {
	MatchedSize string
	PreviousQty int
	NewQty      int
}

// RestockInput adds units of one size to a store's stock.
type RestockInput struct {
	StoreID   uuid.UUID
	Size      string
	Quantity  int
	LengthMM  *float64
	PartnerID *uuid.UUID
	Reason    string
}

// AuditList is one cursor page of a store's audit trail.
type AuditList struct {
	Items      []models.StockAudit `json:"items"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}

// Service exposes the stock mutation surface. Reserve participates in
// the caller's transaction; Restock opens its own.
type Service interface {
	Reserve(ctx context.Context, tx *gorm.DB, input ReserveInput) (*Reservation, error)
	Restock(ctx context.Context, input RestockInput) (*models.StockAudit, error)
	ListAudits(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*AuditList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	policy  Policy
	metrics *metrics.FulfillmentMetrics
}

// NewService wires the inventory service with its dependencies.
func NewService(repo Repository, tx txRunner, policy Policy, m *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, policy: policy, metrics: m}, nil
}

// Reserve takes one unit of the nearest stocked size. Exactly one stock
// write and one audit row happen per call; the caller decides whether a
// failure aborts its surrounding transaction.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, input ReserveInput) (*Reservation, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.TargetLengthMM <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target length must be positive")
	}

	repo := s.repo.WithTx(tx)

	store, err := repo.FindStoreForUpdate(ctx, input.StoreID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store stock")
	}
	if store.Stock == nil {
		s.metrics.IncReservation("no_stock")
		return nil, ErrNoStoreStock
	}

	matchedSize, ok := sizing.MatchNearestSize(input.TargetLengthMM, store.Stock)
	if !ok {
		s.metrics.IncReservation("no_match")
		return nil, ErrNoMatchedSize
	}

	entry := store.Stock[matchedSize]
	currentQty := entry.Qty()
	if currentQty == 0 && !s.policy.ClampOversell {
		s.metrics.IncReservation("out_of_stock")
		return nil, ErrOutOfStock
	}

	newQty := currentQty - 1
	if newQty < 0 {
		newQty = 0
	}
	entry.SetQuantity(newQty)
	store.Stock[matchedSize] = entry

	if err := repo.UpdateStoreStock(ctx, store.ID, store.Stock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write store stock")
	}

	delta := 0
	if currentQty > 0 {
		delta = 1
	}
	audit := &models.StockAudit{
		StoreID:       store.ID,
		ChangeType:    enums.StockChangeSale,
		QuantityDelta: delta,
		NewStock:      newQty,
		Reason:        fmt.Sprintf("reserved one unit of size %s", matchedSize),
		PartnerID:     input.PartnerID,
		CustomerID:    input.CustomerID,
		OrderID:       input.OrderID,
	}
	if err := repo.CreateAudit(ctx, audit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write stock audit")
	}

	s.metrics.IncReservation("reserved")
	return &Reservation{
		MatchedSize: matchedSize,
		PreviousQty: currentQty,
		NewQty:      newQty,
	}, nil
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*models.StockAudit, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.Size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size label required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var audit *models.StockAudit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		store, err := repo.FindStoreForUpdate(ctx, input.StoreID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store stock")
		}
		if store.Stock == nil {
			store.Stock = types.SizeChart{}
		}

		entry, exists := store.Stock[input.Size]
		if !exists {
			if input.LengthMM == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "length required for a new stock size")
			}
			entry = types.StructuredEntry(*input.LengthMM, 0)
		}

		newQty := entry.Qty() + input.Quantity
		entry.SetQuantity(newQty)
		store.Stock[input.Size] = entry

		if err := repo.UpdateStoreStock(ctx, store.ID, store.Stock); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write store stock")
		}

		reason := input.Reason
		if reason == "" {
			reason = fmt.Sprintf("restocked size %s", input.Size)
		}
		audit = &models.StockAudit{
			StoreID:       store.ID,
			ChangeType:    enums.StockChangeRestock,
			QuantityDelta: input.Quantity,
			NewStock:      newQty,
			Reason:        reason,
			PartnerID:     input.PartnerID,
		}
		return repo.CreateAudit(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

func (s *service) ListAudits(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*AuditList, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	audits, err := s.repo.ListAuditsByStore(ctx, storeID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock audits")
	}

	list := &AuditList{Items: audits}
	if len(audits) > limit {
		list.Items = audits[:limit]
		last := list.Items[len(list.Items)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}
