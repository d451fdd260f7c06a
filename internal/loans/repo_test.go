package loans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

func setupLoansTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS loans (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  book_id INTEGER NOT NULL,
  issue_date DATETIME NOT NULL,
  due_date DATETIME NOT NULL,
  return_date DATETIME,
  status TEXT NOT NULL DEFAULT 'ACTIVE',
  extensions_count INTEGER NOT NULL DEFAULT 0
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedLoan(t *testing.T, repo Repository, userID, bookID int64, due time.Time, status enums.LoanStatus) *models.Loan {
	t.Helper()
	loan := &models.Loan{
		UserID:    userID,
		BookID:    bookID,
		IssueDate: due.AddDate(0, 0, -30),
		DueDate:   due,
		Status:    status,
	}
	loan, err := repo.Create(context.Background(), loan)
	require.NoError(t, err)
	require.NotZero(t, loan.ID)
	return loan
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupLoansTestDB(t))
	ctx := context.Background()

	due := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	created := seedLoan(t, repo, 7, 2, due, enums.LoanStatusActive)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, found.UserID)
	assert.Equal(t, enums.LoanStatusActive, found.Status)
	assert.Nil(t, found.ReturnDate)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindByUserOrdersByIssueDate(t *testing.T) {
	repo := NewRepository(setupLoansTestDB(t))
	ctx := context.Background()

	older := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	seedLoan(t, repo, 7, 2, older, enums.LoanStatusActive)
	seedLoan(t, repo, 7, 3, newer, enums.LoanStatusActive)
	seedLoan(t, repo, 8, 2, newer, enums.LoanStatusActive)

	loans, err := repo.FindByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, int64(3), loans[0].BookID)
	assert.Equal(t, int64(2), loans[1].BookID)
}

func TestRepositoryFindOverdue(t *testing.T) {
	repo := NewRepository(setupLoansTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	seedLoan(t, repo, 7, 2, now.AddDate(0, 0, -5), enums.LoanStatusActive)
	seedLoan(t, repo, 7, 3, now.AddDate(0, 0, 5), enums.LoanStatusActive)
	seedLoan(t, repo, 8, 4, now.AddDate(0, 0, -5), enums.LoanStatusReturned)

	overdue, err := repo.FindOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(2), overdue[0].BookID)
}

func TestRepositoryUpdateMarksReturned(t *testing.T) {
	repo := NewRepository(setupLoansTestDB(t))
	ctx := context.Background()

	due := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	loan := seedLoan(t, repo, 7, 2, due, enums.LoanStatusActive)

	returnedAt := time.Date(2026, 3, 25, 9, 0, 0, 0, time.UTC)
	err := repo.Update(ctx, loan.ID, map[string]any{
		"status":      enums.LoanStatusReturned,
		"return_date": returnedAt,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LoanStatusReturned, found.Status)
	require.NotNil(t, found.ReturnDate)
	assert.True(t, found.ReturnDate.Equal(returnedAt))
}

func TestRepositoryStatsAndActiveUsers(t *testing.T) {
	repo := NewRepository(setupLoansTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	seedLoan(t, repo, 7, 2, now.Add(2*time.Hour), enums.LoanStatusActive)
	seedLoan(t, repo, 7, 3, now.AddDate(0, 0, 10), enums.LoanStatusActive)
	seedLoan(t, repo, 8, 4, now.AddDate(0, 0, -1), enums.LoanStatusReturned)

	stats, err := repo.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalLoans)
	assert.Equal(t, int64(2), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.DueToday)
	assert.Equal(t, int64(0), stats.LoansToday)
	assert.Equal(t, int64(0), stats.ReturnsToday)

	active, err := repo.CountDistinctActiveUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestRepositoryStatsCountsTodayActivity(t *testing.T) {
	repo := NewRepository(setupLoansTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	// Issued at noon today (seedLoan sets issue_date 30 days before due).
	seedLoan(t, repo, 7, 2, now.AddDate(0, 0, 30), enums.LoanStatusActive)
	// Issued weeks ago, returned this morning.
	returned := seedLoan(t, repo, 8, 3, now.AddDate(0, 0, -1), enums.LoanStatusActive)
	require.NoError(t, repo.Update(ctx, returned.ID, map[string]any{
		"status":      enums.LoanStatusReturned,
		"return_date": now.Add(-3 * time.Hour),
	}))
	// Issued and returned before today; counts in neither bucket.
	old := seedLoan(t, repo, 9, 4, now.AddDate(0, 0, -10), enums.LoanStatusActive)
	require.NoError(t, repo.Update(ctx, old.ID, map[string]any{
		"status":      enums.LoanStatusReturned,
		"return_date": now.AddDate(0, 0, -2),
	}))

	stats, err := repo.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.LoansToday)
	assert.Equal(t, int64(1), stats.ReturnsToday)
}
