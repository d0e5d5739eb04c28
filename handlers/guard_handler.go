package handlers

import (
	"net/http"
	"strings"

	"github.com/upb/rental-portal/app"
	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/guard"
	"github.com/upb/rental-portal/middleware"
	"github.com/upb/rental-portal/utils"
	"go.uber.org/zap"
)

// GuardQuery is the route transition a client asks about
type GuardQuery struct {
	Path         string `validate:"required,startswith=/,max=2048"`
	RequiredRole string `validate:"omitempty,oneof=tenant landlord admin"`
}

// Role returns the optional per-page role requirement
func (q GuardQuery) Role() auth.Role {
	return auth.Role(q.RequiredRole)
}

// GuardResponse is the JSON form of a render decision
type GuardResponse struct {
	Render         bool   `json:"render"`
	RedirectTarget string `json:"redirect_target"`
	Verdict        string `json:"verdict"`
	Reason         string `json:"reason"`
	UnknownRoute   bool   `json:"unknown_route"`
}

func newGuardResponse(d guard.RenderDecision) GuardResponse {
	return GuardResponse{
		Render:         d.Render,
		RedirectTarget: d.RedirectTarget,
		Verdict:        string(d.Verdict.Kind),
		Reason:         string(d.Verdict.Reason),
		UnknownRoute:   d.Verdict.UnknownRoute,
	}
}

// parseGuardQuery reads and validates ?path=&requiredRole=
func parseGuardQuery(r *http.Request) (GuardQuery, error) {
	q := GuardQuery{
		Path:         strings.TrimSpace(r.URL.Query().Get("path")),
		RequiredRole: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("requiredRole"))),
	}
	if err := utils.ValidateStruct(q); err != nil {
		return GuardQuery{}, err
	}
	return q, nil
}

func writeValidationError(w http.ResponseWriter, message string, err error) {
	details := map[string]interface{}{}
	for field, msg := range utils.GetValidationFields(err) {
		details[field] = msg
	}
	_ = utils.WriteBadRequest(w, message, details)
}

// GuardDecisionHandler handles GET /api/v1/guard.
// The SPA calls it on client-side route transitions before mounting a page.
func GuardDecisionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseGuardQuery(r)
		if err != nil {
			writeValidationError(w, "Invalid guard query", err)
			return
		}

		ctx := r.Context()
		d := deps.Guard.Evaluate(ctx, q.Path, middleware.GetSessionFromContext(ctx), q.Role())

		w.Header().Set("Cache-Control", "no-store")
		if err := utils.WriteOK(w, newGuardResponse(d)); err != nil {
			deps.Logger.Error("failed to write guard decision",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
		}
	}
}
