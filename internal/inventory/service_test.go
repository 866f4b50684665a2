package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
	"github.com/mfeldkamp/passform-backend/pkg/pagination"
	"github.com/mfeldkamp/passform-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func setupInventoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&models.Store{}, &models.StockAudit{}))
	return conn
}

func seedStore(t *testing.T, conn *gorm.DB, stock types.SizeChart) *models.Store {
	t.Helper()

	store := &models.Store{
		ID:        uuid.New(),
		PartnerID: uuid.New(),
		Name:      "Werkstatt Kreuzberg",
		Stock:     stock,
	}
	require.NoError(t, conn.Create(store).Error)
	return store
}

func newTestService(t *testing.T, conn *gorm.DB, policy Policy) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), gormTxRunner{db: conn}, policy, nil)
	require.NoError(t, err)
	return svc
}

func TestReserveDecrementsStockAndWritesAudit(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, types.SizeChart{
		"38": types.StructuredEntry(240, 3),
		"39": types.StructuredEntry(247, 1),
	})
	orderID := uuid.New()

	var res *Reservation
	err := conn.Transaction(func(tx *gorm.DB) error {
		var innerErr error
		res, innerErr = svc.Reserve(context.Background(), tx, ReserveInput{
			StoreID:        store.ID,
			TargetLengthMM: 241,
			OrderID:        &orderID,
		})
		return innerErr
	})
	require.NoError(t, err)

	assert.Equal(t, "38", res.MatchedSize)
	assert.Equal(t, 3, res.PreviousQty)
	assert.Equal(t, 2, res.NewQty)

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	assert.Equal(t, 2, reloaded.Stock["38"].Qty())
	assert.Equal(t, 1, reloaded.Stock["39"].Qty())

	var audits []models.StockAudit
	require.NoError(t, conn.Where("store_id = ?", store.ID).Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, enums.StockChangeSale, audits[0].ChangeType)
	assert.Equal(t, 1, audits[0].QuantityDelta)
	assert.Equal(t, 2, audits[0].NewStock)
	require.NotNil(t, audits[0].OrderID)
	assert.Equal(t, orderID, *audits[0].OrderID)
}

func TestReserveClampsExhaustedSizeAtZero(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, types.SizeChart{
		"38": types.StructuredEntry(240, 0),
	})

	var res *Reservation
	err := conn.Transaction(func(tx *gorm.DB) error {
		var innerErr error
		res, innerErr = svc.Reserve(context.Background(), tx, ReserveInput{
			StoreID:        store.ID,
			TargetLengthMM: 240,
		})
		return innerErr
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.PreviousQty)
	assert.Equal(t, 0, res.NewQty)

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	assert.Equal(t, 0, reloaded.Stock["38"].Qty())

	// the oversell still leaves a trace, with a zero delta
	var audits []models.StockAudit
	require.NoError(t, conn.Where("store_id = ?", store.ID).Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, 0, audits[0].QuantityDelta)
	assert.Equal(t, 0, audits[0].NewStock)
}

func TestReserveStrictPolicyRejectsExhaustedSize(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: false})

	store := seedStore(t, conn, types.SizeChart{
		"38": types.StructuredEntry(240, 0),
	})

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, innerErr := svc.Reserve(context.Background(), tx, ReserveInput{
			StoreID:        store.ID,
			TargetLengthMM: 240,
		})
		return innerErr
	})
	require.ErrorIs(t, err, ErrOutOfStock)

	var count int64
	require.NoError(t, conn.Model(&models.StockAudit{}).Where("store_id = ?", store.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReserveRejectsStoreWithoutStock(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, innerErr := svc.Reserve(context.Background(), tx, ReserveInput{
			StoreID:        store.ID,
			TargetLengthMM: 240,
		})
		return innerErr
	})
	require.ErrorIs(t, err, ErrNoStoreStock)
}

func TestReserveRejectsChartWithoutUsableLengths(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	var broken types.SizeEntry
	require.NoError(t, broken.UnmarshalJSON([]byte(`"bestellt"`)))

	store := seedStore(t, conn, types.SizeChart{"38": broken})

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, innerErr := svc.Reserve(context.Background(), tx, ReserveInput{
			StoreID:        store.ID,
			TargetLengthMM: 240,
		})
		return innerErr
	})
	require.ErrorIs(t, err, ErrNoMatchedSize)
}

func TestReserveMigratesLegacyEntryOnWrite(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	// legacy bare-number entry: length only, implicit zero quantity
	store := seedStore(t, conn, types.SizeChart{
		"38": types.LegacyEntry(240),
	})

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, innerErr := svc.Reserve(context.Background(), tx, ReserveInput{
			StoreID:        store.ID,
			TargetLengthMM: 240,
		})
		return innerErr
	})
	require.NoError(t, err)

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	entry := reloaded.Stock["38"]
	assert.Equal(t, float64(240), entry.LengthMM())
	assert.Equal(t, 0, entry.Qty())
	require.NotNil(t, entry.Quantity)
}

func TestRepeatedReservationsNeverGoNegative(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, types.SizeChart{
		"38": types.StructuredEntry(240, 2),
	})

	for i := 0; i < 5; i++ {
		err := conn.Transaction(func(tx *gorm.DB) error {
			_, innerErr := svc.Reserve(context.Background(), tx, ReserveInput{
				StoreID:        store.ID,
				TargetLengthMM: 240,
			})
			return innerErr
		})
		require.NoError(t, err)

		var reloaded models.Store
		require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
		assert.GreaterOrEqual(t, reloaded.Stock["38"].Qty(), 0)
	}

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	assert.Equal(t, 0, reloaded.Stock["38"].Qty())
}

func TestRestockAddsQuantityAndAudits(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, types.SizeChart{
		"38": types.StructuredEntry(240, 1),
	})
	partnerID := uuid.New()

	audit, err := svc.Restock(context.Background(), RestockInput{
		StoreID:   store.ID,
		Size:      "38",
		Quantity:  4,
		PartnerID: &partnerID,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.StockChangeRestock, audit.ChangeType)
	assert.Equal(t, 4, audit.QuantityDelta)
	assert.Equal(t, 5, audit.NewStock)

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	assert.Equal(t, 5, reloaded.Stock["38"].Qty())
}

func TestRestockNewSizeRequiresLength(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, types.SizeChart{})

	_, err := svc.Restock(context.Background(), RestockInput{
		StoreID:  store.ID,
		Size:     "41",
		Quantity: 2,
	})
	require.Error(t, err)

	length := 260.0
	audit, err := svc.Restock(context.Background(), RestockInput{
		StoreID:  store.ID,
		Size:     "41",
		Quantity: 2,
		LengthMM: &length,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, audit.NewStock)

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	assert.Equal(t, float64(260), reloaded.Stock["41"].LengthMM())
	assert.Equal(t, 2, reloaded.Stock["41"].Qty())
}

func TestListAuditsPaginates(t *testing.T) {
	conn := setupInventoryDB(t)
	svc := newTestService(t, conn, Policy{ClampOversell: true})

	store := seedStore(t, conn, types.SizeChart{
		"38": types.StructuredEntry(240, 10),
	})

	for i := 0; i < 4; i++ {
		_, err := svc.Restock(context.Background(), RestockInput{
			StoreID:  store.ID,
			Size:     "38",
			Quantity: 1,
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond) // distinct created_at per row
	}

	page, err := svc.ListAudits(context.Background(), store.ID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	require.NotNil(t, page.NextCursor)

	rest, err := svc.ListAudits(context.Background(), store.ID, pagination.Params{Limit: 3, Cursor: *page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Nil(t, rest.NextCursor)
}
