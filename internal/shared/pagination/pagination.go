package pagination

import (
	"strconv"
	"strings"

	"recruit-backend/internal/shared/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Default returns the first page with the default limit.
func Default() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// Parse validates raw page and limit query values. Empty values take defaults.
func Parse(rawPage, rawLimit string) (Params, error) {
	p := Default()
	var fields []apperr.FieldError

	if s := strings.TrimSpace(rawPage); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			fields = append(fields, apperr.Field("page", "page must be an integer >= 1", rawPage))
		} else {
			p.Page = v
		}
	}
	if s := strings.TrimSpace(rawLimit); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxLimit {
			fields = append(fields, apperr.Field("limit", "limit must be an integer between 1 and 100", rawLimit))
		} else {
			p.Limit = v
		}
	}
	if len(fields) > 0 {
		return Params{}, apperr.Validation("Validation failed", fields...)
	}
	return p, nil
}

// Offset is the number of records to skip.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func (p Params) TotalPages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Window applies the page to an in-memory slice length, returning [start,end).
func (p Params) Window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n || p.Limit <= 0 {
		end = n
	}
	return start, end
}
