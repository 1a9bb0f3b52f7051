package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one persisted domain event that concerns a user, such as a
// request status change or a recorded payment.
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey" json:"_id"`
	UserEmail string         `gorm:"index;not null" json:"userEmail"`
	Kind      string         `gorm:"size:64;index" json:"kind"`
	MealID    uint           `json:"mealId,omitempty"`
	Data      datatypes.JSON `json:"data,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}
