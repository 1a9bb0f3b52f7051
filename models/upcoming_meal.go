package models

import (
	"encoding/json"
	"time"
)

// UpcomingMeal is a meal proposal waiting for an admin to publish it.
type UpcomingMeal struct {
	ID uint `gorm:"primaryKey"`
	MealContent
	ReactionCount int     `gorm:"not null;default:0"`
	ReviewCount   int     `gorm:"not null;default:0"`
	Rating        float64 `gorm:"not null;default:0"`
	Likes         []UpcomingMealLike
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UpcomingMealLike struct {
	ID             uint   `gorm:"primaryKey"`
	UpcomingMealID uint   `gorm:"not null;uniqueIndex:idx_upcoming_like_user"`
	UserEmail      string `gorm:"not null;uniqueIndex:idx_upcoming_like_user"`
	CreatedAt      time.Time
}

// Document renders the upcoming meal in the same shape as a published one.
// Upcoming meals cannot be reviewed, so the review list is always empty.
func (u UpcomingMeal) Document() MealDocument {
	emails := make([]string, 0, len(u.Likes))
	for _, l := range u.Likes {
		emails = append(emails, l.UserEmail)
	}
	return MealDocument{
		ID:          u.ID,
		MealContent: u.MealContent.normalized(),
		Reaction:    Reaction{Count: u.ReactionCount, UserEmails: emails},
		Reviews:     ReviewList{ReviewCount: u.ReviewCount, Reviews: []Review{}},
		Rating:      u.Rating,
		CreatedAt:   u.CreatedAt,
	}
}

func (u UpcomingMeal) MarshalJSON() ([]byte, error) { return json.Marshal(u.Document()) }
