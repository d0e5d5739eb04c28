package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/rental-portal/models"
	"github.com/upb/rental-portal/repositories"
	"go.uber.org/zap"
)

const accessEventColumns = `id, request_id, subject, authenticated, role, path, required_role,
		       verdict, reason, redirect_target, unknown_route, occurred_at`

// AccessEventRepository implements the repositories.AccessEventRepository interface
type AccessEventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccessEventRepository creates a new access event repository
func NewAccessEventRepository(db *DB, logger *zap.Logger) repositories.AccessEventRepository {
	return &AccessEventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new access event
func (r *AccessEventRepository) Insert(ctx context.Context, event *models.AccessEvent) error {
	query := `
		INSERT INTO access_events (` + accessEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.RequestID,
		event.Subject,
		event.Authenticated,
		event.Role,
		event.Path,
		event.RequiredRole,
		event.Verdict,
		event.Reason,
		event.RedirectTarget,
		event.UnknownRoute,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert access event: %w", err)
	}

	r.logger.Debug("access event inserted",
		zap.String("id", event.ID.String()),
		zap.String("reason", event.Reason))
	return nil
}

// ListRecent returns the newest events matching filter
func (r *AccessEventRepository) ListRecent(ctx context.Context, filter models.AccessEventFilter) ([]*models.AccessEvent, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conds = append(conds, fmt.Sprintf("subject = $%d", len(args)))
	}
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		conds = append(conds, fmt.Sprintf("reason = $%d", len(args)))
	}

	query := `SELECT ` + accessEventColumns + ` FROM access_events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY occurred_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access events: %w", err)
	}
	defer rows.Close()

	var events []*models.AccessEvent
	for rows.Next() {
		e := &models.AccessEvent{}
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.Subject,
			&e.Authenticated,
			&e.Role,
			&e.Path,
			&e.RequiredRole,
			&e.Verdict,
			&e.Reason,
			&e.RedirectTarget,
			&e.UnknownRoute,
			&e.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access events: %w", err)
	}

	return events, nil
}
