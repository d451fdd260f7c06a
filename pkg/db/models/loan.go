package models

import (
	"time"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

// Loan is the orchestrator-owned loan record. UserID and BookID reference
// the directories by value; the row never embeds directory data.
type Loan struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64            `gorm:"column:user_id;not null;index"`
	BookID          int64            `gorm:"column:book_id;not null;index"`
	IssueDate       time.Time        `gorm:"column:issue_date;not null;autoCreateTime"`
	DueDate         time.Time        `gorm:"column:due_date;not null"`
	ReturnDate      *time.Time       `gorm:"column:return_date"`
	Status          enums.LoanStatus `gorm:"column:status;not null;default:ACTIVE"`
	ExtensionsCount int              `gorm:"column:extensions_count;not null;default:0"`
}
