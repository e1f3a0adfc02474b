// Package sessions stores server-side session records. Three backends share
// the Repository contract: PostgreSQL (durable), Redis (shared, TTL-native)
// and an in-process cache for single-instance deployments and tests.
package sessions

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/metrics"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
)

// Repository is the session backing store. Get returns common.ErrorNotFound
// for unknown and expired ids. Delete of an unknown id is not an error.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}

func observe(backend, op string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		status = "miss"
	default:
		status = "error"
	}
	metrics.SessionOpsTotal.WithLabelValues(backend, op, status).Inc()
}
