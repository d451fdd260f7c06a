package models

import "time"

// Book is the Book Directory's canonical record. AvailableCopies is only
// ever mutated through the guarded availability update in the books repo.
type Book struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string    `gorm:"column:title;not null;index"`
	Author          string    `gorm:"column:author;not null;index"`
	ISBN            string    `gorm:"column:isbn;not null;uniqueIndex:uq_books_isbn"`
	Copies          int       `gorm:"column:copies;not null"`
	AvailableCopies int       `gorm:"column:available_copies;not null"`
	BorrowCount     int       `gorm:"column:borrow_count;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
