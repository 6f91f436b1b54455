package models

// SortOrder is the direction of a contact listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable contact fields, named as they appear in the JSON representation.
const (
	SortByID          = "_id"
	SortByName        = "name"
	SortByPhoneNumber = "phoneNumber"
	SortByEmail       = "email"
	SortByIsFavourite = "isFavourite"
	SortByContactType = "contactType"
	SortByCreatedAt   = "createdAt"
	SortByUpdatedAt   = "updatedAt"
)

// SortableFields lists every field a listing may be sorted by.
var SortableFields = []string{
	SortByID,
	SortByName,
	SortByPhoneNumber,
	SortByEmail,
	SortByIsFavourite,
	SortByContactType,
	SortByCreatedAt,
	SortByUpdatedAt,
}

// ContactFilter narrows a listing by exact match. Zero values match anything.
type ContactFilter struct {
	ContactType ContactType
	IsFavourite *bool
}

// ListQuery describes one page of a user's contacts.
type ListQuery struct {
	UserID    string
	Page      int
	PerPage   int
	SortBy    string
	SortOrder SortOrder
	Filter    ContactFilter
}

// Skip returns the number of records preceding the requested page.
func (q ListQuery) Skip() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// ContactPage is a page of contacts plus pagination metadata.
type ContactPage struct {
	Data            []Contact `json:"data"`
	Page            int       `json:"page"`
	PerPage         int       `json:"perPage"`
	TotalItems      int64     `json:"totalItems"`
	TotalPages      int       `json:"totalPages"`
	HasPreviousPage bool      `json:"hasPreviousPage"`
	HasNextPage     bool      `json:"hasNextPage"`
}
