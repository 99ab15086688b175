package model

import "time"

type Book struct {
	ID           string `gorm:"primaryKey"`
	Title        string `gorm:"not null"`
	Author       string `gorm:"not null"`
	Description  string
	Price        float64
	Quantity     int
	Availability bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
