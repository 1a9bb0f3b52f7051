package models

import "time"

const RequestStatusPending = "pending"

// RequestedMeal is a user's request for a meal, carrying a snapshot of the
// meal at request time. Status is free text set by admins.
type RequestedMeal struct {
	ID          uint      `gorm:"primaryKey" json:"_id"`
	MealID      uint      `gorm:"not null;uniqueIndex:idx_request_meal_user" json:"mealId"`
	UserEmail   string    `gorm:"not null;uniqueIndex:idx_request_meal_user" json:"userEmail"`
	Name        string    `gorm:"index" json:"name"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Likes       int       `json:"likes"`
	ReviewCount int       `json:"reviewCount"`
	Status      string    `gorm:"size:64;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"requestedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ServedMeal is a write-only record of a served request.
type ServedMeal struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	RequestID uint      `gorm:"index" json:"requestId"`
	MealID    uint      `gorm:"index" json:"mealId"`
	Title     string    `json:"title"`
	UserEmail string    `gorm:"index" json:"userEmail"`
	Name      string    `json:"name"`
	Status    string    `gorm:"size:64" json:"status"`
	ServedAt  time.Time `gorm:"autoCreateTime" json:"servedAt"`
}
