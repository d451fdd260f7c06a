package books

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// Repository defines persistence operations for the books table.
type Repository interface {
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByID(ctx context.Context, id int64) (*models.Book, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Book, error)
	Search(ctx context.Context, params SearchParams) ([]models.Book, int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
	AdjustAvailability(ctx context.Context, id int64, op enums.CounterOp) (int64, error)
	Popular(ctx context.Context, limit int) ([]models.Book, error)
	Stats(ctx context.Context) (*StatsView, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a books repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var booksOut []models.Book
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&booksOut).Error
	if err != nil {
		return nil, err
	}
	return booksOut, nil
}

func (r *repository) Search(ctx context.Context, params SearchParams) ([]models.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})
	if params.Filters.Title != "" {
		query = query.Where("title LIKE ?", "%"+params.Filters.Title+"%")
	}
	if params.Filters.Author != "" {
		query = query.Where("author LIKE ?", "%"+params.Filters.Author+"%")
	}
	if params.Filters.ISBN != "" {
		query = query.Where("isbn = ?", params.Filters.ISBN)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var booksOut []models.Book
	err := query.
		Order("title ASC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PerPage).
		Find(&booksOut).Error
	if err != nil {
		return nil, 0, err
	}
	return booksOut, total, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Book{})
	return res.RowsAffected, res.Error
}

// AdjustAvailability applies the availability mutation as a guarded update.
// A decrement only lands while copies remain, an increment only while the
// count is below the owned total, so concurrent issuances cannot oversell.
// Returns the number of rows changed; zero means the guard rejected.
func (r *repository) AdjustAvailability(ctx context.Context, id int64, op enums.CounterOp) (int64, error) {
	var res *gorm.DB
	switch op {
	case enums.CounterOpDecrement:
		res = r.db.WithContext(ctx).Exec(`
			UPDATE books
			SET available_copies = available_copies - 1,
				borrow_count = borrow_count + 1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND available_copies > 0
		`, id)
	case enums.CounterOpIncrement:
		res = r.db.WithContext(ctx).Exec(`
			UPDATE books
			SET available_copies = available_copies + 1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND available_copies < copies
		`, id)
	default:
		return 0, gorm.ErrInvalidData
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) Popular(ctx context.Context, limit int) ([]models.Book, error) {
	var booksOut []models.Book
	err := r.db.WithContext(ctx).
		Order("borrow_count DESC").
		Limit(limit).
		Find(&booksOut).Error
	if err != nil {
		return nil, err
	}
	return booksOut, nil
}

func (r *repository) Stats(ctx context.Context) (*StatsView, error) {
	var stats StatsView
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("COUNT(*) AS total_books, COALESCE(SUM(copies), 0) AS total_copies, COALESCE(SUM(available_copies), 0) AS available_copies").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
