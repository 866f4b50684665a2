package fulfillment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mfeldkamp/passform-backend/internal/inventory"
	"github.com/mfeldkamp/passform-backend/internal/sizing"
	"github.com/mfeldkamp/passform-backend/pkg/config"
	"github.com/mfeldkamp/passform-backend/pkg/db"
	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
	pkgerrors "github.com/mfeldkamp/passform-backend/pkg/errors"
	"github.com/mfeldkamp/passform-backend/pkg/logger"
	"github.com/mfeldkamp/passform-backend/pkg/metrics"
	"github.com/mfeldkamp/passform-backend/pkg/types"
)

// ErrMissingPrerequisite is returned when the customer lacks the priced
// services or foot measurements order creation depends on.
var ErrMissingPrerequisite = pkgerrors.New(pkgerrors.CodeValidation, "customer is missing order prerequisites")

// InitialStatus is the lifecycle phase every order starts in.
const InitialStatus = enums.OrderStatusPreparing

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTxOptions(ctx context.Context, opts *sql.TxOptions, fn func(tx *gorm.DB) error) error
}

// Service orchestrates order creation and the event-logged mutations of
// an order's lifecycle.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.OrderEvent, error)
	UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*models.OrderEvent, error)
	RecordScan(ctx context.Context, input ScanInput) (*models.Order, error)
	GetOrderWithHistory(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo      Repository
	inventory inventory.Service
	tx        txRunner
	cfg       config.FulfillmentConfig
	metrics   *metrics.FulfillmentMetrics
	logg      *logger.Logger
}

// NewService wires the fulfillment orchestrator with its dependencies.
func NewService(
	repo Repository,
	inv inventory.Service,
	tx txRunner,
	cfg config.FulfillmentConfig,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		inventory: inv,
		tx:        tx,
		cfg:       cfg,
		metrics:   m,
		logg:      logg,
	}, nil
}

// CreateOrder places an order: snapshot, initial event, optional stock
// reservation and creation note, all in one serializable transaction.
// A serialization failure is retried once with fresh reads.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	started := time.Now()

	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	customer, err := s.repo.FindCustomer(ctx, input.CustomerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if missing := missingPrerequisites(customer); len(missing) > 0 {
		// wrap, not WithDetails on the sentinel: the sentinel is shared
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingPrerequisite, "customer is missing order prerequisites").
			WithDetails(map[string]any{"missing": missing})
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	target := sizing.TargetLength(*customer.FootLengthLeftMM, *customer.FootLengthRightMM, s.cfg.FitBufferMM)

	var recommended *string
	if label, ok := sizing.MatchNearestSize(target, product.SizeChart); ok {
		recommended = &label
	}

	snapshot := types.ProductSpec{
		ProductID: product.ID,
		Name:      product.Name,
		Model:     product.Model,
		Material:  product.Material,
		Color:     product.Color,
		BasePrice: product.BasePrice,
		SizeChart: product.SizeChart,
	}

	result := &CreateOrderResult{Status: InitialStatus, RecommendedSize: recommended}

	serializable := &sql.TxOptions{Isolation: sql.LevelSerializable}
	for attempt := 0; ; attempt++ {
		result.OrderID = uuid.Nil
		result.ReservedSize = nil

		err = s.tx.WithTxOptions(ctx, serializable, func(tx *gorm.DB) error {
			return s.createOrderTx(ctx, tx, input, customer, snapshot, target, recommended, result)
		})
		if err == nil {
			break
		}
		if attempt == 0 && db.IsSerializationFailure(err) {
			s.logg.Warn(ctx, "serialization failure during order creation, retrying")
			continue
		}
		if db.IsSerializationFailure(err) {
			err = pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent stock reservation conflict")
		}
		s.metrics.IncOrderCreated("failed")
		s.metrics.ObserveCreateDuration("failed", time.Since(started))
		return nil, err
	}

	s.metrics.IncOrderCreated("created")
	s.metrics.ObserveCreateDuration("created", time.Since(started))
	s.logg.Info(s.logg.WithOrderID(ctx, result.OrderID.String()), "order created")
	return result, nil
}

func (s *service) createOrderTx(
	ctx context.Context,
	tx *gorm.DB,
	input CreateOrderInput,
	customer *models.Customer,
	snapshot types.ProductSpec,
	target float64,
	recommended *string,
	result *CreateOrderResult,
) error {
	repo := s.repo.WithTx(tx)

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		PartnerID:       customer.PartnerID,
		StoreID:         input.StoreID,
		Status:          InitialStatus,
		Spec:            snapshot,
		RecommendedSize: recommended,
	}
	if err := repo.CreateOrder(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	result.OrderID = order.ID

	event := &models.OrderEvent{
		OrderID:    order.ID,
		FromStatus: InitialStatus,
		ToStatus:   InitialStatus,
		PartnerID:  input.Actor.PartnerID,
		EmployeeID: input.Actor.EmployeeID,
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create snapshot event")
	}

	if input.StoreID != nil {
		res, err := s.inventory.Reserve(ctx, tx, inventory.ReserveInput{
			StoreID:        *input.StoreID,
			TargetLengthMM: target,
			PartnerID:      input.Actor.PartnerID,
			CustomerID:     &customer.ID,
			OrderID:        &order.ID,
		})
		if err != nil {
			return err
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"reserved_size": res.MatchedSize}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reserved size")
		}
		size := res.MatchedSize
		result.ReservedSize = &size
	}

	note := &models.OrderNote{
		OrderID:   order.ID,
		PartnerID: input.Actor.PartnerID,
		Note:      creationNote(recommended),
	}
	if err := repo.CreateNote(ctx, note); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order note")
	}
	return nil
}

func creationNote(recommended *string) string {
	if recommended == nil {
		return "Bestellung angelegt"
	}
	return fmt.Sprintf("Bestellung angelegt, empfohlene Größe %s", *recommended)
}

func missingPrerequisites(customer *models.Customer) []string {
	missing := []string{}
	if customer.FootLengthLeftMM == nil {
		missing = append(missing, "foot_length_left_mm")
	}
	if customer.FootLengthRightMM == nil {
		missing = append(missing, "foot_length_right_mm")
	}
	if customer.FittingServicePrice == nil {
		missing = append(missing, "fitting_service_price")
	}
	if customer.CraftingServicePrice == nil {
		missing = append(missing, "crafting_service_price")
	}
	return missing
}

// UpdateStatus records a transition event and moves the order. Any jump
// between distinct statuses is allowed; the common path is monotonic but
// operational corrections happen.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.OrderEvent, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.To.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.To))
	}

	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == input.To {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already has that status")
		}

		event = &models.OrderEvent{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   input.To,
			PartnerID:  input.Actor.PartnerID,
			EmployeeID: input.Actor.EmployeeID,
			Note:       input.Note,
		}
		if err := repo.CreateEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transition event")
		}
		return repo.UpdateOrder(ctx, order.ID, map[string]any{"status": input.To})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, input.OrderID.String()), "order status updated")
	return event, nil
}

// UpdatePayment records a payment-change event and flips the indicator.
func (s *service) UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*models.OrderEvent, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var event *models.OrderEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Paid == input.Paid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment indicator unchanged")
		}

		from := order.Paid
		to := input.Paid
		event = &models.OrderEvent{
			OrderID:         order.ID,
			FromStatus:      order.Status,
			ToStatus:        order.Status,
			IsPaymentChange: true,
			PaymentFrom:     &from,
			PaymentTo:       &to,
			PartnerID:       input.Actor.PartnerID,
			EmployeeID:      input.Actor.EmployeeID,
		}
		if err := repo.CreateEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment event")
		}
		return repo.UpdateOrder(ctx, order.ID, map[string]any{"paid": input.Paid})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, input.OrderID.String()), "order payment updated")
	return event, nil
}

// RecordScan stamps the warehouse scan timestamp. An order is scanned at
// most once.
func (s *service) RecordScan(ctx context.Context, input ScanInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if loaded.ScannedAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already scanned")
		}

		now := time.Now().UTC()
		if err := repo.UpdateOrder(ctx, loaded.ID, map[string]any{"scanned_at": now}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store scan timestamp")
		}
		loaded.ScannedAt = &now
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, input.OrderID.String()), "order scanned")
	return order, nil
}

// GetOrderWithHistory loads an order with its full event and note history
// in chronological order, for the reporting endpoints.
func (s *service) GetOrderWithHistory(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrderWithHistory(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	return order, nil
}
