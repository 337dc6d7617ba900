package composables

import (
	"net/http"
	"strconv"

	"github.com/oneacrefund/fieldops-console/pkg/configuration"
)

type PaginationParams struct {
	Limit  int
	Offset int
	Page   int
}

// UsePaginated extracts page and limit query parameters, clamping the limit
// to the configured maximum so one request cannot ask for the world.
func UsePaginated(r *http.Request) PaginationParams {
	cfg := configuration.Use()
	page, err := strconv.Atoi(GetLastQueryParam(r, "page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(GetLastQueryParam(r, "limit"))
	if err != nil || limit < 1 {
		limit = cfg.PageSize
	}
	if limit > cfg.MaxPageSize {
		limit = cfg.MaxPageSize
	}
	return PaginationParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
		Page:   page,
	}
}
