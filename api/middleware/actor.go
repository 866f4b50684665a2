package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/api/responses"
	pkgerrors "github.com/mfeldkamp/passform-backend/pkg/errors"
	"github.com/mfeldkamp/passform-backend/pkg/logger"
)

// Authentication lives in front of this service; the gateway forwards
// the verified actor through these headers.
const (
	actorPartnerHeader  = "X-Actor-Partner-Id"
	actorEmployeeHeader = "X-Actor-Employee-Id"
)

type actorCtxKey struct{}

// ActorContext holds the acting partner or employee for the request.
// Both fields nil means the change is system-attributed.
type ActorContext struct {
	PartnerID  *uuid.UUID
	EmployeeID *uuid.UUID
}

// Actor parses the forwarded actor headers into the request context.
// Malformed IDs are rejected; absent headers are fine.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorContext{}

			partnerID, err := parseActorHeader(r, actorPartnerHeader)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			actor.PartnerID = partnerID

			employeeID, err := parseActorHeader(r, actorEmployeeHeader)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			actor.EmployeeID = employeeID

			ctx := context.WithValue(r.Context(), actorCtxKey{}, actor)
			if logg != nil && actor.PartnerID != nil {
				ctx = logg.WithPartnerID(ctx, actor.PartnerID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the actor attached by the Actor middleware.
func ActorFromContext(ctx context.Context) ActorContext {
	if actor, ok := ctx.Value(actorCtxKey{}).(ActorContext); ok {
		return actor
	}
	return ActorContext{}
}

func parseActorHeader(r *http.Request, header string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(header))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor header").
			WithDetails(map[string]any{"header": header})
	}
	return &id, nil
}
