package model

import "time"

// Borrow tracks one checkout of a book by a user. Notified flips to
// true once the overdue reminder went out so overlapping sweep runs
// never mail twice.
type Borrow struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"index;not null"`
	BookID string `gorm:"index;not null"`

	User User `gorm:"foreignKey:UserID;references:ID"`
	Book Book `gorm:"foreignKey:BookID;references:ID"`

	BorrowDate time.Time
	DueDate    time.Time  `gorm:"index"`
	ReturnDate *time.Time
	Price      float64
	Fine       float64
	Notified   bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
