package dto

import "github.com/gocomet/rider-roster/internal/domain/rider"

// ListRidersQuery holds the raw list parameters. Page and limit stay strings
// so that malformed values fall back to defaults instead of failing the request.
type ListRidersQuery struct {
	Search string `form:"search"`
	Status string `form:"status"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
}

// ToListQuery converts the raw parameters into a normalized list query
func (q ListRidersQuery) ToListQuery() rider.ListQuery {
	return rider.ParseListQuery(q.Search, q.Status, q.Page, q.Limit)
}

// MessageResponse is returned by operations without a resource body
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports process and store status
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Store  string `json:"store"`
	Env    string `json:"env"`
	Uptime string `json:"uptime"`
}
