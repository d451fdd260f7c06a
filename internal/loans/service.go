package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/directory"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
	"github.com/angelmondragon/libraria-backend/pkg/metrics"
)

// Saga step names used in logs and failure metrics.
const (
	stepResolveUser     = "resolve_user"
	stepResolveBook     = "resolve_book"
	stepDecrementCopies = "decrement_availability"
	stepIncrementCopies = "increment_availability"
	stepPersistLoan     = "persist_loan"
	stepMarkReturned    = "mark_returned"
	stepCompensate      = "compensate_increment"
)

// Service defines the loan lifecycle operations.
type Service interface {
	Issue(ctx context.Context, input IssueLoanInput) (*LoanView, error)
	Return(ctx context.Context, input ReturnLoanInput) (*LoanView, error)
	Extend(ctx context.Context, loanID int64, input ExtendLoanInput) (*ExtendedLoanView, error)
	History(ctx context.Context, userID int64) (*HistoryView, error)
	Overdue(ctx context.Context) (*OverdueView, error)
	Detail(ctx context.Context, loanID int64) (*DetailView, error)
	Stats(ctx context.Context) (*StatsView, error)
	ActiveUsers(ctx context.Context) (*ActiveUsersView, error)
}

type service struct {
	repo    Repository
	users   UserDirectory
	books   BookDirectory
	logg    *logger.Logger
	metrics *metrics.LoanMetrics
	period  time.Duration
	now     func() time.Time
}

// NewService builds the loan orchestrator with the required dependencies.
func NewService(repo Repository, users UserDirectory, books BookDirectory, logg *logger.Logger, m *metrics.LoanMetrics, period time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loans repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory client required")
	}
	if books == nil {
		return nil, fmt.Errorf("book directory client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if period <= 0 {
		return nil, fmt.Errorf("loan period must be positive")
	}
	return &service{
		repo:    repo,
		users:   users,
		books:   books,
		logg:    logg,
		metrics: m,
		period:  period,
		now:     time.Now,
	}, nil
}

// Issue runs the issuance saga: resolve user, resolve book, decrement the
// book's availability at the owning directory, then persist the ACTIVE loan.
// When the persist fails after the decrement, a compensating increment is
// attempted best-effort; the copy leaks only if that also fails, and the
// failure is logged for reconciliation.
func (s *service) Issue(ctx context.Context, input IssueLoanInput) (*LoanView, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	if input.BookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book_id is required")
	}

	issuedAt := s.now().UTC()
	if input.DueDate != nil && input.DueDate.UTC().Before(issuedAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_date cannot be before the issue date")
	}

	ctx = s.logg.WithUserID(ctx, input.UserID)
	ctx = s.logg.WithBookID(ctx, input.BookID)

	userStart := time.Now()
	user, err := s.users.GetByID(ctx, input.UserID)
	s.observe("users", "get_by_id", userStart)
	if err != nil {
		return nil, s.failIssue(ctx, stepResolveUser, err)
	}

	bookStart := time.Now()
	book, err := s.books.GetByID(ctx, input.BookID)
	s.observe("books", "get_by_id", bookStart)
	if err != nil {
		return nil, s.failIssue(ctx, stepResolveBook, err)
	}
	if book.AvailableCopies <= 0 {
		return nil, s.failIssue(ctx, stepDecrementCopies,
			pkgerrors.New(pkgerrors.CodeValidation, "No copies available"))
	}

	adjustStart := time.Now()
	_, err = s.books.AdjustAvailability(ctx, book.ID, enums.CounterOpDecrement)
	s.observe("books", "adjust_availability", adjustStart)
	if err != nil {
		return nil, s.failIssue(ctx, stepDecrementCopies, err)
	}

	dueDate := issuedAt.Add(s.period)
	if input.DueDate != nil {
		dueDate = input.DueDate.UTC()
	}

	loan := &models.Loan{
		UserID:    user.ID,
		BookID:    book.ID,
		IssueDate: issuedAt,
		DueDate:   dueDate,
		Status:    enums.LoanStatusActive,
	}
	loan, err = s.repo.Create(ctx, loan)
	if err != nil {
		createErr := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist loan")
		if _, compErr := s.books.AdjustAvailability(ctx, book.ID, enums.CounterOpIncrement); compErr != nil {
			s.metrics.IncFailure("issue", stepCompensate)
			s.logg.Error(ctx, "availability compensation failed, copy leaked",
				multierr.Combine(createErr, compErr))
		}
		return nil, s.failIssue(ctx, stepPersistLoan, createErr)
	}

	// Borrow counters live at the user directory; keeping them current is
	// best-effort and never fails the issuance.
	if _, err := s.users.AdjustBorrows(ctx, user.ID, enums.CounterOpIncrement); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("borrow counter increment failed for user %d: %v", user.ID, err))
	}

	s.metrics.IncOperation("issue")
	ctx = s.logg.WithLoanID(ctx, loan.ID)
	s.logg.Info(ctx, "loan issued")
	return loanToView(loan), nil
}

// Return marks an active loan RETURNED after handing the copy back to the
// book directory. An availability failure leaves the loan ACTIVE so the
// caller can retry.
func (s *service) Return(ctx context.Context, input ReturnLoanInput) (*LoanView, error) {
	if input.LoanID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan_id is required")
	}

	ctx = s.logg.WithLoanID(ctx, input.LoanID)

	loan, err := s.findLoan(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}

	status, err := loan.Status.Transition(enums.LoanStatusReturned)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Loan already returned")
	}

	adjustStart := time.Now()
	_, err = s.books.AdjustAvailability(ctx, loan.BookID, enums.CounterOpIncrement)
	s.observe("books", "adjust_availability", adjustStart)
	if err != nil {
		s.metrics.IncFailure("return", stepIncrementCopies)
		return nil, err
	}

	returnedAt := s.now().UTC()
	updates := map[string]any{
		"status":      status,
		"return_date": returnedAt,
	}
	if err := s.repo.Update(ctx, loan.ID, updates); err != nil {
		s.metrics.IncFailure("return", stepMarkReturned)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark loan returned")
	}
	loan.Status = status
	loan.ReturnDate = &returnedAt

	if _, err := s.users.AdjustBorrows(ctx, loan.UserID, enums.CounterOpDecrement); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("borrow counter decrement failed for user %d: %v", loan.UserID, err))
	}

	s.metrics.IncOperation("return")
	s.logg.Info(ctx, "loan returned")
	return loanToView(loan), nil
}

// Extend pushes the due date by the requested number of days. No directory
// calls are involved; zero and negative counts move the date accordingly.
func (s *service) Extend(ctx context.Context, loanID int64, input ExtendLoanInput) (*ExtendedLoanView, error) {
	if loanID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan id is required")
	}

	ctx = s.logg.WithLoanID(ctx, loanID)

	loan, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status == enums.LoanStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cannot extend a returned loan")
	}

	originalDue := loan.DueDate
	extendedDue := originalDue.AddDate(0, 0, input.ExtensionDays)
	updates := map[string]any{
		"due_date":         extendedDue,
		"extensions_count": loan.ExtensionsCount + 1,
	}
	if err := s.repo.Update(ctx, loan.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "extend loan")
	}

	s.metrics.IncOperation("extend")
	s.logg.Info(ctx, "loan extended")
	return &ExtendedLoanView{
		ID:              loan.ID,
		UserID:          loan.UserID,
		BookID:          loan.BookID,
		Status:          loan.Status,
		OriginalDueDate: originalDue,
		ExtendedDueDate: extendedDue,
		ExtensionsCount: loan.ExtensionsCount + 1,
	}, nil
}

// History returns a user's loans enriched with book snapshots. Book details
// come back in one batched directory call instead of a fetch per loan.
func (s *service) History(ctx context.Context, userID int64) (*HistoryView, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	ctx = s.logg.WithUserID(ctx, userID)

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	records, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan history")
	}

	bookIDs := make([]int64, 0, len(records))
	for _, loan := range records {
		bookIDs = append(bookIDs, loan.BookID)
	}
	batchStart := time.Now()
	books, err := s.books.GetByIDs(ctx, bookIDs)
	s.observe("books", "get_by_ids", batchStart)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryLoanView, 0, len(records))
	for i := range records {
		view := HistoryLoanView{LoanView: *loanToView(&records[i])}
		if book, ok := books[records[i].BookID]; ok {
			view.Book = bookToSnapshot(book)
		}
		history = append(history, view)
	}
	return &HistoryView{Loans: history, Total: len(history)}, nil
}

// Overdue lists ACTIVE loans past their due date. days_overdue is the raw
// calendar difference at query time. Each row carries the borrower and
// book snapshots; directory failures degrade a row to bare loan fields
// rather than failing the listing.
func (s *service) Overdue(ctx context.Context) (*OverdueView, error) {
	now := s.now().UTC()
	records, err := s.repo.FindOverdue(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load overdue loans")
	}

	bookIDs := make([]int64, 0, len(records))
	for _, loan := range records {
		bookIDs = append(bookIDs, loan.BookID)
	}
	batchStart := time.Now()
	books, err := s.books.GetByIDs(ctx, bookIDs)
	s.observe("books", "get_by_ids", batchStart)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("overdue book snapshots unavailable: %v", err))
		books = nil
	}

	userCache := make(map[int64]*UserSnapshot)
	loansOut := make([]OverdueLoanView, 0, len(records))
	for i := range records {
		row := OverdueLoanView{
			LoanView:    *loanToView(&records[i]),
			User:        s.userSnapshot(ctx, userCache, records[i].UserID),
			DaysOverdue: int(now.Sub(records[i].DueDate).Hours() / 24),
		}
		if book, ok := books[records[i].BookID]; ok {
			row.Book = bookToSnapshot(book)
		}
		loansOut = append(loansOut, row)
	}
	return &OverdueView{Loans: loansOut, Total: len(loansOut)}, nil
}

// userSnapshot resolves a borrower once per listing; a failed lookup is
// cached as nil so a dead directory costs one call per distinct user.
func (s *service) userSnapshot(ctx context.Context, cache map[int64]*UserSnapshot, id int64) *UserSnapshot {
	if snap, ok := cache[id]; ok {
		return snap
	}
	var snap *UserSnapshot
	userStart := time.Now()
	if user, err := s.users.GetByID(ctx, id); err == nil {
		snap = &UserSnapshot{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	s.observe("users", "get_by_id", userStart)
	cache[id] = snap
	return snap
}

// Detail returns one loan with its user and book snapshots. Snapshot fetch
// failures degrade to a bare loan view rather than failing the request.
func (s *service) Detail(ctx context.Context, loanID int64) (*DetailView, error) {
	if loanID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan id is required")
	}

	loan, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	detail := &DetailView{LoanView: *loanToView(loan)}
	if user, err := s.users.GetByID(ctx, loan.UserID); err == nil {
		detail.User = &UserSnapshot{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	if book, err := s.books.GetByID(ctx, loan.BookID); err == nil {
		detail.Book = bookToSnapshot(*book)
	}
	return detail, nil
}

func (s *service) Stats(ctx context.Context) (*StatsView, error) {
	stats, err := s.repo.Stats(ctx, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan stats")
	}
	return stats, nil
}

func (s *service) ActiveUsers(ctx context.Context) (*ActiveUsersView, error) {
	count, err := s.repo.CountDistinctActiveUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active users")
	}
	return &ActiveUsersView{ActiveUsers: count}, nil
}

func (s *service) findLoan(ctx context.Context, id int64) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Loan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loan")
	}
	return loan, nil
}

func (s *service) observe(directory, call string, start time.Time) {
	s.metrics.ObserveDirectoryCall(directory, call, time.Since(start))
}

func (s *service) failIssue(ctx context.Context, step string, err error) error {
	s.metrics.IncFailure("issue", step)
	s.logg.Error(ctx, "loan issuance failed at "+step, err)
	return err
}

func loanToView(loan *models.Loan) *LoanView {
	return &LoanView{
		ID:              loan.ID,
		UserID:          loan.UserID,
		BookID:          loan.BookID,
		IssueDate:       loan.IssueDate,
		DueDate:         loan.DueDate,
		ReturnDate:      loan.ReturnDate,
		Status:          loan.Status,
		ExtensionsCount: loan.ExtensionsCount,
	}
}

func bookToSnapshot(book directory.Book) *BookSnapshot {
	return &BookSnapshot{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		ISBN:   book.ISBN,
	}
}
