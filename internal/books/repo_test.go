package books

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
	"github.com/angelmondragon/libraria-backend/pkg/pagination"
)

func setupBooksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS books (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  isbn TEXT NOT NULL,
  copies INTEGER NOT NULL,
  available_copies INTEGER NOT NULL,
  borrow_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uq_books_isbn UNIQUE (isbn)
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedBook(t *testing.T, repo Repository, title, isbn string, copies, available int) *models.Book {
	t.Helper()
	book, err := repo.Create(context.Background(), &models.Book{
		Title:           title,
		Author:          "Author",
		ISBN:            isbn,
		Copies:          copies,
		AvailableCopies: available,
	})
	require.NoError(t, err)
	return book
}

func TestRepositoryCreateDuplicateISBN(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))

	seedBook(t, repo, "Dune", "0441013597", 3, 3)
	_, err := repo.Create(context.Background(), &models.Book{
		Title:           "Dune (reissue)",
		Author:          "Herbert",
		ISBN:            "0441013597",
		Copies:          1,
		AvailableCopies: 1,
	})
	require.Error(t, err)
}

func TestRepositoryAdjustAvailabilityGuards(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()

	book := seedBook(t, repo, "Dune", "0441013597", 2, 1)

	// one copy out: decrement lands, second decrement rejects
	affected, err := repo.AdjustAvailability(ctx, book.ID, enums.CounterOpDecrement)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.AdjustAvailability(ctx, book.ID, enums.CounterOpDecrement)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	found, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.AvailableCopies)
	assert.Equal(t, 1, found.BorrowCount)

	// increments land until the owned total is reached
	for i := 0; i < 2; i++ {
		affected, err = repo.AdjustAvailability(ctx, book.ID, enums.CounterOpIncrement)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	}
	affected, err = repo.AdjustAvailability(ctx, book.ID, enums.CounterOpIncrement)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	found, err = repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.AvailableCopies)
}

func TestRepositorySearchFiltersAndPaginates(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()

	seedBook(t, repo, "Dune", "isbn-1", 1, 1)
	seedBook(t, repo, "Dune Messiah", "isbn-2", 1, 1)
	seedBook(t, repo, "Neuromancer", "isbn-3", 1, 1)

	params := SearchParams{
		Filters:    SearchFilters{Title: "Dune"},
		Pagination: pagination.Normalize(pagination.Params{Page: 1, PerPage: 1}),
	}
	records, total, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 1)
	assert.Equal(t, "Dune", records[0].Title)

	params.Pagination = pagination.Normalize(pagination.Params{Page: 2, PerPage: 1})
	records, _, err = repo.Search(ctx, params)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dune Messiah", records[0].Title)
}

func TestRepositoryPopularAndStats(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()

	first := seedBook(t, repo, "Dune", "isbn-1", 3, 3)
	seedBook(t, repo, "Neuromancer", "isbn-2", 2, 1)

	for i := 0; i < 2; i++ {
		_, err := repo.AdjustAvailability(ctx, first.ID, enums.CounterOpDecrement)
		require.NoError(t, err)
	}

	popular, err := repo.Popular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Dune", popular[0].Title)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBooks)
	assert.Equal(t, int64(5), stats.TotalCopies)
	assert.Equal(t, int64(2), stats.AvailableCopies)
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()

	book := seedBook(t, repo, "Dune", "isbn-1", 1, 1)

	affected, err := repo.Delete(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
