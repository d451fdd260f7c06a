package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// Repository defines persistence operations for the users table.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	AdjustBorrows(ctx context.Context, id int64, op enums.CounterOp) (int64, error)
	MostActive(ctx context.Context, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AdjustBorrows moves the borrow counters as a guarded update. An increment
// also bumps the lifetime counter; a decrement only lands while the user
// still holds a loan. Returns the number of rows changed.
func (r *repository) AdjustBorrows(ctx context.Context, id int64, op enums.CounterOp) (int64, error) {
	var res *gorm.DB
	switch op {
	case enums.CounterOpIncrement:
		res = r.db.WithContext(ctx).Exec(`
			UPDATE users
			SET current_borrows = current_borrows + 1,
				books_borrowed = books_borrowed + 1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, id)
	case enums.CounterOpDecrement:
		res = r.db.WithContext(ctx).Exec(`
			UPDATE users
			SET current_borrows = current_borrows - 1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND current_borrows > 0
		`, id)
	default:
		return 0, gorm.ErrInvalidData
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) MostActive(ctx context.Context, limit int) ([]models.User, error) {
	var usersOut []models.User
	err := r.db.WithContext(ctx).
		Where("books_borrowed > 0").
		Order("books_borrowed DESC").
		Limit(limit).
		Find(&usersOut).Error
	if err != nil {
		return nil, err
	}
	return usersOut, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
