package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db"
	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
)

const (
	defaultRole     = "student"
	mostActiveLimit = 10
)

// LoanService is the slice of the loan orchestrator the directory needs
// for its stats endpoint.
type LoanService interface {
	ActiveUsers(ctx context.Context) (int64, error)
}

// Service defines the user directory operations.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserView, error)
	GetByID(ctx context.Context, id int64) (*UserView, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*UserView, error)
	AdjustBorrows(ctx context.Context, id int64, input AdjustBorrowsInput) (*UserView, error)
	MostActive(ctx context.Context) (*ActiveUsersView, error)
	Stats(ctx context.Context) (*StatsView, error)
}

type service struct {
	repo  Repository
	loans LoanService
	logg  *logger.Logger
}

// NewService builds the user directory service. The loans client may be nil
// when the loan service is not deployed; stats then report zero activity.
func NewService(repo Repository, loans LoanService, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, loans: loans, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserView, error) {
	role := input.Role
	if role == "" {
		role = defaultRole
	}

	user := &models.User{
		Name:  input.Name,
		Email: input.Email,
		Role:  role,
	}
	user, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "User with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	ctx = s.logg.WithUserID(ctx, user.ID)
	s.logg.Info(ctx, "user registered")
	return userToView(user), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToView(user), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateUserInput) (*UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
		user.Name = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
		user.Email = *input.Email
	}
	if input.Role != nil {
		updates["role"] = *input.Role
		user.Role = *input.Role
	}
	if len(updates) == 0 {
		return userToView(user), nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "uq_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "User with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return userToView(user), nil
}

// AdjustBorrows applies a borrow-counter mutation. A rejected decrement
// against an existing user means the counter is already at zero.
func (s *service) AdjustBorrows(ctx context.Context, id int64, input AdjustBorrowsInput) (*UserView, error) {
	if !input.Operation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operation must be increment or decrement")
	}

	affected, err := s.repo.AdjustBorrows(ctx, id, input.Operation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust borrow counters")
	}
	if affected == 0 {
		if _, err := s.findUser(ctx, id); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "User has no open borrows")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToView(user), nil
}

func (s *service) MostActive(ctx context.Context) (*ActiveUsersView, error) {
	records, err := s.repo.MostActive(ctx, mostActiveLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load most active users")
	}
	views := make([]UserView, 0, len(records))
	for i := range records {
		views = append(views, *userToView(&records[i]))
	}
	return &ActiveUsersView{Users: views, Total: len(views)}, nil
}

// Stats reports the user count plus live borrower activity from the loan
// service. A loan service outage degrades active_users to zero instead of
// failing the endpoint.
func (s *service) Stats(ctx context.Context) (*StatsView, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}

	var active int64
	if s.loans != nil {
		active, err = s.loans.ActiveUsers(ctx)
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("loan service unavailable for stats: %v", err))
			active = 0
		}
	}
	return &StatsView{TotalUsers: total, ActiveUsers: active}, nil
}

func (s *service) findUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func userToView(user *models.User) *UserView {
	return &UserView{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		BooksBorrowed:  user.BooksBorrowed,
		CurrentBorrows: user.CurrentBorrows,
		CreatedAt:      user.CreatedAt,
	}
}
