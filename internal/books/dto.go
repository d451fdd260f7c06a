package books

import (
	"time"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
	"github.com/angelmondragon/libraria-backend/pkg/pagination"
)

// CreateBookInput captures the payload for registering a title.
type CreateBookInput struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
	Copies int    `json:"copies" validate:"required,gt=0"`
}

// UpdateBookInput captures the partial-update payload. Nil fields are left
// untouched.
type UpdateBookInput struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	Copies          *int    `json:"copies,omitempty" validate:"omitempty,gte=0"`
	AvailableCopies *int    `json:"available_copies,omitempty" validate:"omitempty,gte=0"`
}

// AdjustAvailabilityInput names the direction of an availability mutation.
// Legacy callers also send the value they computed client-side; the guarded
// UPDATE derives the new count itself, so that field is accepted and ignored.
type AdjustAvailabilityInput struct {
	AvailableCopies *int            `json:"available_copies,omitempty"`
	Operation       enums.CounterOp `json:"operation" validate:"required"`
}

// SearchFilters describe the text filters supported by the book search.
type SearchFilters struct {
	Title  string
	Author string
	ISBN   string
}

// BookView is the wire representation of a book.
type BookView struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Copies          int       `json:"copies"`
	AvailableCopies int       `json:"available_copies"`
	BorrowCount     int       `json:"borrow_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookListView wraps the paginated search result.
type BookListView struct {
	Books   []BookView `json:"books"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

// BatchView wraps the batch-get result.
type BatchView struct {
	Books []BookView `json:"books"`
}

// StatsView reports aggregate inventory counts.
type StatsView struct {
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`
}

// SearchParams bundles filters with pagination for the repository.
type SearchParams struct {
	Filters    SearchFilters
	Pagination pagination.Params
}
