package users

import (
	"time"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// CreateUserInput captures the payload for registering a borrower.
type CreateUserInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=student faculty staff"`
}

// UpdateUserInput captures the partial-update payload.
type UpdateUserInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=student faculty staff"`
}

// AdjustBorrowsInput names the direction of a borrow-counter mutation.
type AdjustBorrowsInput struct {
	Operation enums.CounterOp `json:"operation" validate:"required"`
}

// UserView is the wire representation of a user.
type UserView struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	BooksBorrowed  int       `json:"books_borrowed"`
	CurrentBorrows int       `json:"current_borrows"`
	CreatedAt      time.Time `json:"created_at"`
}

// ActiveUsersView lists the most active borrowers.
type ActiveUsersView struct {
	Users []UserView `json:"users"`
	Total int        `json:"total"`
}

// StatsView reports user counts. ActiveUsers comes from the loan service
// and reads zero when it cannot be reached.
type StatsView struct {
	TotalUsers  int64 `json:"total_users"`
	ActiveUsers int64 `json:"active_users"`
}
