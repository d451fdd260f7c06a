package loans

import (
	"context"
	"time"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/directory"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// Repository defines persistence operations for the loans table.
type Repository interface {
	Create(ctx context.Context, loan *models.Loan) (*models.Loan, error)
	FindByID(ctx context.Context, id int64) (*models.Loan, error)
	FindByUser(ctx context.Context, userID int64) ([]models.Loan, error)
	FindOverdue(ctx context.Context, cutoff time.Time) ([]models.Loan, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Stats(ctx context.Context, now time.Time) (*StatsView, error)
	CountDistinctActiveUsers(ctx context.Context) (int64, error)
}

// UserDirectory is the slice of the user service the orchestrator needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*directory.User, error)
	AdjustBorrows(ctx context.Context, id int64, op enums.CounterOp) (*directory.User, error)
}

// BookDirectory is the slice of the book service the orchestrator needs.
type BookDirectory interface {
	GetByID(ctx context.Context, id int64) (*directory.Book, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]directory.Book, error)
	AdjustAvailability(ctx context.Context, id int64, op enums.CounterOp) (*directory.Book, error)
}
