package handlers

import (
	"net/http"
	"strconv"

	"github.com/upb/rental-portal/app"
	"github.com/upb/rental-portal/middleware"
	"github.com/upb/rental-portal/models"
	"github.com/upb/rental-portal/utils"
	"go.uber.org/zap"
)

const defaultAccessEventLimit = 50

// ListAccessEventsHandler handles GET /api/v1/admin/access-events
func ListAccessEventsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Audit == nil {
			_ = utils.WriteError(w, http.StatusServiceUnavailable, "Access audit is not configured", nil)
			return
		}

		query := r.URL.Query()
		filter := models.AccessEventFilter{
			Subject: query.Get("subject"),
			Reason:  query.Get("reason"),
			Limit:   defaultAccessEventLimit,
		}
		if raw := query.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				_ = utils.WriteBadRequest(w, "Invalid limit", map[string]interface{}{"limit": raw})
				return
			}
			filter.Limit = limit
		}

		ctx := r.Context()
		events, err := deps.Audit.ListRecent(ctx, filter)
		if err != nil {
			if utils.IsValidationError(err) {
				writeValidationError(w, "Invalid access event filter", err)
				return
			}
			deps.Logger.Error("failed to list access events",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		if events == nil {
			events = []*models.AccessEvent{}
		}
		_ = utils.WriteOK(w, events)
	}
}
