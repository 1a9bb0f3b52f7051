package models

import "time"

// Payment is an append-only record of a completed package purchase.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"_id"`
	UserEmail     string    `gorm:"index;not null" json:"userEmail"`
	PackageName   string    `gorm:"size:32" json:"packageName"`
	Amount        float64   `json:"amount"`
	TransactionID string    `gorm:"index" json:"transactionId"`
	CreatedAt     time.Time `json:"date"`
}
