package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/api/middleware"
	"github.com/mfeldkamp/passform-backend/api/responses"
	"github.com/mfeldkamp/passform-backend/api/validators"
	"github.com/mfeldkamp/passform-backend/internal/inventory"
	pkgerrors "github.com/mfeldkamp/passform-backend/pkg/errors"
	"github.com/mfeldkamp/passform-backend/pkg/logger"
	"github.com/mfeldkamp/passform-backend/pkg/pagination"
)

type restockRequest struct {
	Size     string   `json:"size" validate:"required,max=16"`
	Quantity int      `json:"quantity" validate:"required,min=1"`
	LengthMM *float64 `json:"length_mm,omitempty" validate:"omitempty,gt=0"`
	Reason   string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// StoreRestock adds units of one size to a store's stock.
func StoreRestock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req restockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		audit, err := svc.Restock(r.Context(), inventory.RestockInput{
			StoreID:   storeID,
			Size:      req.Size,
			Quantity:  req.Quantity,
			LengthMM:  req.LengthMM,
			PartnerID: actor.PartnerID,
			Reason:    req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, audit)
	}
}

// StoreAudits pages through a store's stock audit trail, newest first.
func StoreAudits(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAudits(r.Context(), storeID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseStoreID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "storeId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	storeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return storeID, nil
}
