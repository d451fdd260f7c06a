package users

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  books_borrowed INTEGER NOT NULL DEFAULT 0,
  current_borrows INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uq_users_email UNIQUE (email)
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

type stubLoanService struct {
	active int64
	err    error
}

func (s *stubLoanService) ActiveUsers(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.active, nil
}

func newUsersService(t *testing.T, loans LoanService) Service {
	t.Helper()
	repo := NewRepository(setupUsersTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "users-test", Output: io.Discard})
	svc, err := NewService(repo, loans, logg)
	require.NoError(t, err)
	return svc
}

func TestServiceCreateDefaultsRole(t *testing.T) {
	svc := newUsersService(t, nil)

	view, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "student", view.Role)
	assert.Equal(t, 0, view.CurrentBorrows)
}

func TestServiceCreateDuplicateEmailConflicts(t *testing.T) {
	svc := newUsersService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Name: "Ada II", Email: "ada@example.com"})
	appErr := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "User with this email already exists", appErr.Message())
}

func TestServiceGetUnknownUser(t *testing.T) {
	svc := newUsersService(t, nil)

	_, err := svc.GetByID(context.Background(), 404)
	appErr := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	assert.Equal(t, "User not found", appErr.Message())
}

func TestServiceAdjustBorrowsRoundTrip(t *testing.T) {
	svc := newUsersService(t, nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	up, err := svc.AdjustBorrows(ctx, view.ID, AdjustBorrowsInput{Operation: enums.CounterOpIncrement})
	require.NoError(t, err)
	assert.Equal(t, 1, up.CurrentBorrows)
	assert.Equal(t, 1, up.BooksBorrowed)

	down, err := svc.AdjustBorrows(ctx, view.ID, AdjustBorrowsInput{Operation: enums.CounterOpDecrement})
	require.NoError(t, err)
	assert.Equal(t, 0, down.CurrentBorrows)
	// lifetime counter never decrements
	assert.Equal(t, 1, down.BooksBorrowed)
}

func TestServiceAdjustBorrowsBelowZeroRejected(t *testing.T) {
	svc := newUsersService(t, nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.AdjustBorrows(ctx, view.ID, AdjustBorrowsInput{Operation: enums.CounterOpDecrement})
	appErr := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "User has no open borrows", appErr.Message())
}

func TestServiceAdjustBorrowsUnknownUser(t *testing.T) {
	svc := newUsersService(t, nil)

	_, err := svc.AdjustBorrows(context.Background(), 404, AdjustBorrowsInput{Operation: enums.CounterOpIncrement})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceMostActiveOrdersByLifetimeBorrows(t *testing.T) {
	svc := newUsersService(t, nil)
	ctx := context.Background()

	quiet, err := svc.Create(ctx, CreateUserInput{Name: "Quiet", Email: "quiet@example.com"})
	require.NoError(t, err)
	busy, err := svc.Create(ctx, CreateUserInput{Name: "Busy", Email: "busy@example.com"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.AdjustBorrows(ctx, busy.ID, AdjustBorrowsInput{Operation: enums.CounterOpIncrement})
		require.NoError(t, err)
	}
	_, err = svc.AdjustBorrows(ctx, quiet.ID, AdjustBorrowsInput{Operation: enums.CounterOpIncrement})
	require.NoError(t, err)

	active, err := svc.MostActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, active.Total)
	assert.Equal(t, "Busy", active.Users[0].Name)
}

func TestServiceStatsUsesLoanService(t *testing.T) {
	svc := newUsersService(t, &stubLoanService{active: 5})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(5), stats.ActiveUsers)
}

func TestServiceStatsDegradesWhenLoanServiceDown(t *testing.T) {
	svc := newUsersService(t, &stubLoanService{err: pkgerrors.New(pkgerrors.CodeDependency, "loan service unavailable")})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(0), stats.ActiveUsers)
}
