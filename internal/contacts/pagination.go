package contacts

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/MediSynth-io/contactbook/internal/models"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// calcPaginationData derives the page metadata from the filtered total.
func calcPaginationData(total int64, perPage, page int) models.ContactPage {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return models.ContactPage{
		Page:            page,
		PerPage:         perPage,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}

func parsePositiveInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ParseListQuery reads page, perPage, sortBy, sortOrder, type and
// isFavourite from a query string. Values that do not parse fall back to
// their defaults; unknown filters are ignored.
func ParseListQuery(userID string, q url.Values) models.ListQuery {
	lq := models.ListQuery{
		UserID:    userID,
		Page:      parsePositiveInt(q.Get("page"), defaultPage),
		PerPage:   parsePositiveInt(q.Get("perPage"), defaultPerPage),
		SortBy:    models.SortByID,
		SortOrder: models.SortAsc,
	}

	if sortBy := q.Get("sortBy"); slices.Contains(models.SortableFields, sortBy) {
		lq.SortBy = sortBy
	}
	if order := models.SortOrder(strings.ToLower(q.Get("sortOrder"))); order == models.SortAsc || order == models.SortDesc {
		lq.SortOrder = order
	}

	if t := models.ContactType(q.Get("type")); t.Valid() {
		lq.Filter.ContactType = t
	}
	switch strings.ToLower(q.Get("isFavourite")) {
	case "true":
		v := true
		lq.Filter.IsFavourite = &v
	case "false":
		v := false
		lq.Filter.IsFavourite = &v
	}
	return lq
}
