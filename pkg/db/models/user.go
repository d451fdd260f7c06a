package models

import "time"

// User is the User Directory's canonical record. BooksBorrowed is the
// lifetime counter; CurrentBorrows tracks open loans and is adjusted via
// the borrow-counter endpoint.
type User struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string    `gorm:"column:name;not null"`
	Email          string    `gorm:"column:email;not null;uniqueIndex:uq_users_email"`
	Role           string    `gorm:"column:role;not null;default:student"`
	BooksBorrowed  int       `gorm:"column:books_borrowed;not null;default:0"`
	CurrentBorrows int       `gorm:"column:current_borrows;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
