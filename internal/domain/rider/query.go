package rider

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// StatusAll disables the status filter
	StatusAll = "all"
)

// ListQuery carries the search, filter and pagination parameters of a list request
type ListQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// ListResult is one page of riders plus the size of the whole filtered set
type ListResult struct {
	Riders []*Rider `json:"riders"`
	Total  int64    `json:"total"`
}

// ParseListQuery builds a query from raw request parameters. Unparseable or
// non-positive page and limit values fall back to their defaults.
func ParseListQuery(search, status, page, limit string) ListQuery {
	return ListQuery{
		Search: search,
		Status: status,
		Page:   parsePositive(page, DefaultPage),
		Limit:  parsePositive(limit, DefaultLimit),
	}.Normalize()
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Normalize applies defaults and trims the search and status values
func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.TrimSpace(q.Status)
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	return q
}

// Offset is the number of filtered riders preceding the requested page.
// It saturates at math.MaxInt instead of overflowing.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// PastEnd reports whether the page starts after the last of total filtered riders
func (q ListQuery) PastEnd(total int64) bool {
	return int64(q.Offset()) >= total
}

// FiltersStatus reports whether the query restricts the status field
func (q ListQuery) FiltersStatus() bool {
	return q.Status != "" && q.Status != StatusAll
}

// Matches applies the search and status filter to a single rider.
// Search is a case-insensitive substring match on name, email or nric.
func (q ListQuery) Matches(r *Rider) bool {
	if q.FiltersStatus() && string(r.Status) != q.Status {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(r.Name), needle) ||
		strings.Contains(strings.ToLower(r.Email), needle) ||
		strings.Contains(strings.ToLower(r.NRIC), needle)
}

// SortNewestFirst orders riders by creation time descending, ties by ID descending
func SortNewestFirst(riders []*Rider) {
	sort.SliceStable(riders, func(i, j int) bool {
		a, b := riders[i], riders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Paginate returns the page of an already filtered and sorted slice
func (q ListQuery) Paginate(riders []*Rider) []*Rider {
	offset := q.Offset()
	if offset < 0 || offset >= len(riders) {
		return []*Rider{}
	}
	end := len(riders)
	if q.Limit < end-offset {
		end = offset + q.Limit
	}
	return riders[offset:end]
}
