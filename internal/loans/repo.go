package loans

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a loans repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *repository) FindByUser(ctx context.Context, userID int64) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issue_date DESC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *repository) FindOverdue(ctx context.Context, cutoff time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", enums.LoanStatusActive, cutoff).
		Order("due_date ASC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Stats(ctx context.Context, now time.Time) (*StatsView, error) {
	var stats StatsView

	if err := r.db.WithContext(ctx).Model(&models.Loan{}).Count(&stats.TotalLoans).Error; err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ?", enums.LoanStatusActive).
		Count(&stats.ActiveLoans).Error
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	err = r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ? AND due_date >= ? AND due_date < ?", enums.LoanStatusActive, dayStart, dayEnd).
		Count(&stats.DueToday).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("issue_date >= ?", dayStart).
		Count(&stats.LoansToday).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("return_date >= ?", dayStart).
		Count(&stats.ReturnsToday).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *repository) CountDistinctActiveUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ?", enums.LoanStatusActive).
		Distinct("user_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
