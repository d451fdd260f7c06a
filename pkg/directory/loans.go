package directory

import (
	"context"
	"net/http"
)

// LoansClient talks to the loan orchestrator. The user directory uses it to
// enrich its stats with live borrower activity.
type LoansClient struct {
	*client
}

// NewLoansClient builds a client against the loan service base URL.
func NewLoansClient(baseURL string, opts ...Option) (*LoansClient, error) {
	c, err := newClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &LoansClient{client: c}, nil
}

// ActiveUsers returns how many distinct users currently hold active loans.
func (c *LoansClient) ActiveUsers(ctx context.Context) (int64, error) {
	var payload struct {
		ActiveUsers int64 `json:"active_users"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/loans/active-users", nil, &payload); err != nil {
		return 0, err
	}
	return payload.ActiveUsers, nil
}
