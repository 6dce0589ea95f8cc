package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/erpcore/erp-api/internal"
	"github.com/erpcore/erp-api/internal/dashboard"
)

type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) dashboard.RepositoryAPI {
	return &DashboardRepository{db: db}
}

const statsQuery = `
	SELECT
		(SELECT COUNT(*) FROM users)                          AS total_users,
		(SELECT COUNT(*) FROM users WHERE is_active = TRUE)   AS active_users,
		(SELECT COUNT(*) FROM roles)                          AS total_roles,
		(SELECT COUNT(*) FROM permissions)                    AS total_permissions`

func (r *DashboardRepository) Stats() (*dashboard.Stats, error) {
	ctx, cancel := internal.WithTimeout(context.Background(), 0)
	defer cancel()

	var stats dashboard.Stats
	if err := r.db.GetContext(ctx, &stats, statsQuery); err != nil {
		return nil, err
	}
	return &stats, nil
}
