package dashboard

import "time"

// Stats carries the aggregate counts shown on the admin landing page.
type Stats struct {
	Users       int64 `json:"users" db:"total_users"`
	ActiveUsers int64 `json:"activeUsers" db:"active_users"`
	Roles       int64 `json:"roles" db:"total_roles"`
	Permissions int64 `json:"permissions" db:"total_permissions"`
}

// Summary wraps the stats with the time they were computed.
type Summary struct {
	Stats       Stats     `json:"stats"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type RepositoryAPI interface {
	Stats() (*Stats, error)
}
