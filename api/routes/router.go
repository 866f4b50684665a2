package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfeldkamp/passform-backend/api/controllers"
	"github.com/mfeldkamp/passform-backend/api/middleware"
	"github.com/mfeldkamp/passform-backend/internal/fulfillment"
	"github.com/mfeldkamp/passform-backend/internal/inventory"
	"github.com/mfeldkamp/passform-backend/pkg/config"
	"github.com/mfeldkamp/passform-backend/pkg/db"
	"github.com/mfeldkamp/passform-backend/pkg/logger"
	pkgredis "github.com/mfeldkamp/passform-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	fulfillmentService fulfillment.Service,
	inventoryService inventory.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// typed nils must not reach the handlers as non-nil interfaces
	var idempotencyStore pkgredis.IdempotencyStore
	var redisPinger pkgredis.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(fulfillmentService, logg))
			r.Post("/{orderId}/status", controllers.OrderUpdateStatus(fulfillmentService, logg))
			r.Post("/{orderId}/payment", controllers.OrderUpdatePayment(fulfillmentService, logg))
			r.Post("/{orderId}/scan", controllers.OrderScan(fulfillmentService, logg))
			r.Get("/{orderId}/timeline", controllers.OrderTimeline(fulfillmentService, logg))
			r.Get("/{orderId}/changelog", controllers.OrderChangeLog(fulfillmentService, logg))
		})

		r.Route("/stores/{storeId}", func(r chi.Router) {
			r.Post("/restock", controllers.StoreRestock(inventoryService, logg))
			r.Get("/audits", controllers.StoreAudits(inventoryService, logg))
		})
	})

	return r
}
