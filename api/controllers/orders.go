package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/api/middleware"
	"github.com/mfeldkamp/passform-backend/api/responses"
	"github.com/mfeldkamp/passform-backend/api/validators"
	"github.com/mfeldkamp/passform-backend/internal/changelog"
	"github.com/mfeldkamp/passform-backend/internal/fulfillment"
	"github.com/mfeldkamp/passform-backend/internal/timeline"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
	pkgerrors "github.com/mfeldkamp/passform-backend/pkg/errors"
	"github.com/mfeldkamp/passform-backend/pkg/logger"
)

type createOrderRequest struct {
	CustomerID string  `json:"customer_id" validate:"required,uuid"`
	ProductID  string  `json:"product_id" validate:"required,uuid"`
	StoreID    *string `json:"store_id,omitempty" validate:"omitempty,uuid"`
}

// OrderCreate places a new order, optionally reserving stock at a store.
func OrderCreate(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, _ := uuid.Parse(req.CustomerID)
		productID, _ := uuid.Parse(req.ProductID)

		input := fulfillment.CreateOrderInput{
			CustomerID: customerID,
			ProductID:  productID,
			Actor:      actorFromRequest(r),
		}
		if req.StoreID != nil {
			storeID, _ := uuid.Parse(*req.StoreID)
			input.StoreID = &storeID
		}

		result, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// OrderUpdateStatus records a transition event and moves the order.
func OrderUpdateStatus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		event, err := svc.UpdateStatus(r.Context(), fulfillment.UpdateStatusInput{
			OrderID: orderID,
			To:      status,
			Note:    req.Note,
			Actor:   actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

type updatePaymentRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

// OrderUpdatePayment flips the payment indicator through the event log.
func OrderUpdatePayment(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.UpdatePayment(r.Context(), fulfillment.UpdatePaymentInput{
			OrderID: orderID,
			Paid:    *req.Paid,
			Actor:   actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

// OrderScan stamps the warehouse scan timestamp.
func OrderScan(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordScan(r.Context(), fulfillment.ScanInput{
			OrderID: orderID,
			Actor:   actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id":   order.ID,
			"scanned_at": order.ScannedAt,
		})
	}
}

type timelineSegmentView struct {
	Status   enums.OrderStatus `json:"status"`
	Start    time.Time         `json:"start"`
	End      *time.Time        `json:"end,omitempty"`
	Ongoing  bool              `json:"ongoing"`
	Duration string            `json:"duration"`
}

type timelineMergedView struct {
	Statuses []enums.OrderStatus `json:"statuses"`
	Start    time.Time           `json:"start"`
	End      *time.Time          `json:"end,omitempty"`
	Ongoing  bool                `json:"ongoing"`
	Duration string              `json:"duration"`
}

type timelineResponse struct {
	OrderID  uuid.UUID             `json:"order_id"`
	Segments []timelineSegmentView `json:"segments"`
	Merged   *timelineMergedView   `json:"merged,omitempty"`
}

// OrderTimeline reconstructs the per-status timeline. The optional merge
// query parameter names a comma-separated status group reported as one
// combined bucket.
func OrderTimeline(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := parseMergeGroup(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrderWithHistory(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		segments := timeline.Reconstruct(order.Events, order.CreatedAt, order.Status, time.Now().UTC())

		resp := timelineResponse{OrderID: order.ID}
		for _, segment := range segments {
			resp.Segments = append(resp.Segments, timelineSegmentView{
				Status:   segment.Status,
				Start:    segment.Start,
				End:      segment.End,
				Ongoing:  segment.Ongoing,
				Duration: timeline.FormatDuration(segment.Duration),
			})
		}
		if len(group) > 0 {
			if merged := timeline.Merge(segments, group); merged != nil {
				resp.Merged = &timelineMergedView{
					Statuses: merged.Statuses,
					Start:    merged.Start,
					End:      merged.End,
					Ongoing:  merged.Ongoing,
					Duration: timeline.FormatDuration(merged.Duration),
				}
			}
		}
		responses.WriteSuccess(w, resp)
	}
}

// OrderChangeLog returns the unified change feed for an order.
func OrderChangeLog(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrderWithHistory(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries := changelog.Aggregate(changelog.Input{
			Events:    order.Events,
			Notes:     order.Notes,
			CreatedAt: order.CreatedAt,
			ScannedAt: order.ScannedAt,
		})
		responses.WriteSuccess(w, map[string]any{
			"order_id": order.ID,
			"entries":  entries,
		})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func parseMergeGroup(r *http.Request) ([]enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("merge"))
	if raw == "" {
		return nil, nil
	}

	var group []enums.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		status, err := enums.ParseOrderStatus(strings.TrimSpace(part))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid merge group").
				WithDetails(map[string]any{"field": "merge"})
		}
		group = append(group, status)
	}
	return group, nil
}

func actorFromRequest(r *http.Request) fulfillment.Actor {
	actor := middleware.ActorFromContext(r.Context())
	return fulfillment.Actor{
		PartnerID:  actor.PartnerID,
		EmployeeID: actor.EmployeeID,
	}
}
