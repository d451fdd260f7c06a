package directory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// User is the directory snapshot of a borrower.
type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	BooksBorrowed  int    `json:"books_borrowed"`
	CurrentBorrows int    `json:"current_borrows"`
}

// UsersClient talks to the user directory service.
type UsersClient struct {
	*client
}

// NewUsersClient builds a client against the user directory base URL.
func NewUsersClient(baseURL string, opts ...Option) (*UsersClient, error) {
	c, err := newClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &UsersClient{client: c}, nil
}

// GetByID fetches one user.
func (c *UsersClient) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdjustBorrows moves the user's borrow counters up or down by one.
func (c *UsersClient) AdjustBorrows(ctx context.Context, id int64, op enums.CounterOp) (*User, error) {
	body := struct {
		Operation string `json:"operation"`
	}{Operation: op.String()}

	var user User
	path := fmt.Sprintf("/api/users/%d/borrows", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
