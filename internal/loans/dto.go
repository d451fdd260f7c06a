package loans

import (
	"time"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// IssueLoanInput captures the payload for issuing a new loan.
type IssueLoanInput struct {
	UserID  int64      `json:"user_id" validate:"required,gt=0"`
	BookID  int64      `json:"book_id" validate:"required,gt=0"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// ReturnLoanInput captures the payload for returning a loan.
type ReturnLoanInput struct {
	LoanID int64 `json:"loan_id" validate:"required,gt=0"`
}

// ExtendLoanInput captures the payload for extending a loan. Zero and
// negative day counts are accepted and shorten the due date.
type ExtendLoanInput struct {
	ExtensionDays int `json:"extension_days"`
}

// LoanView is the wire representation of a loan.
type LoanView struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	BookID          int64            `json:"book_id"`
	IssueDate       time.Time        `json:"issue_date"`
	DueDate         time.Time        `json:"due_date"`
	ReturnDate      *time.Time       `json:"return_date,omitempty"`
	Status          enums.LoanStatus `json:"status"`
	ExtensionsCount int              `json:"extensions_count"`
}

// ExtendedLoanView reports the due date movement after an extension.
type ExtendedLoanView struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	BookID          int64            `json:"book_id"`
	Status          enums.LoanStatus `json:"status"`
	OriginalDueDate time.Time        `json:"original_due_date"`
	ExtendedDueDate time.Time        `json:"extended_due_date"`
	ExtensionsCount int              `json:"extensions_count"`
}

// BookSnapshot is the book detail attached to history and detail views.
type BookSnapshot struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// UserSnapshot is the user detail attached to the loan detail view.
type UserSnapshot struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HistoryLoanView is one row in a user's loan history, enriched with the
// book snapshot when the directory still knows the title.
type HistoryLoanView struct {
	LoanView
	Book *BookSnapshot `json:"book,omitempty"`
}

// HistoryView wraps a user's loan history.
type HistoryView struct {
	Loans []HistoryLoanView `json:"loans"`
	Total int               `json:"total"`
}

// OverdueLoanView is one overdue loan with the raw day difference,
// enriched with user and book snapshots when the directories answer.
type OverdueLoanView struct {
	LoanView
	User        *UserSnapshot `json:"user,omitempty"`
	Book        *BookSnapshot `json:"book,omitempty"`
	DaysOverdue int           `json:"days_overdue"`
}

// OverdueView wraps the overdue listing.
type OverdueView struct {
	Loans []OverdueLoanView `json:"loans"`
	Total int               `json:"total"`
}

// DetailView is a loan plus its user and book snapshots.
type DetailView struct {
	LoanView
	User *UserSnapshot `json:"user,omitempty"`
	Book *BookSnapshot `json:"book,omitempty"`
}

// StatsView reports aggregate loan counts. The today counters are open
// ended from local day start so a stats call at 23:59 still sees the
// whole day's traffic.
type StatsView struct {
	TotalLoans   int64 `json:"total_loans"`
	ActiveLoans  int64 `json:"active_loans"`
	DueToday     int64 `json:"due_today"`
	LoansToday   int64 `json:"loans_today"`
	ReturnsToday int64 `json:"returns_today"`
}

// ActiveUsersView reports how many distinct users hold active loans.
type ActiveUsersView struct {
	ActiveUsers int64 `json:"active_users"`
}
