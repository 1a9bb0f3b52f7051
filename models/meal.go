package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MealContent is the descriptive part of a meal, shared by published and
// upcoming meals so a publish copies it field for field.
type MealContent struct {
	Title            string                      `gorm:"not null" json:"title"`
	Category         string                      `gorm:"index" json:"category"`
	Ingredients      datatypes.JSONSlice[string] `json:"ingredients"`
	Description      string                      `gorm:"type:text" json:"description"`
	Price            float64                     `gorm:"index" json:"price"`
	Image            string                      `json:"image"`
	PostTime         string                      `json:"postTime"`
	DistributorEmail string                      `gorm:"index" json:"distributorEmail"`
	DistributorName  string                      `json:"distributorName"`
}

// Meal is a published meal. Likes and Reviews must be preloaded before rendering.
type Meal struct {
	ID uint `gorm:"primaryKey"`
	MealContent
	ReactionCount int     `gorm:"not null;default:0"`
	ReviewCount   int     `gorm:"not null;default:0"`
	Rating        float64 `gorm:"not null;default:0"`
	Likes         []MealLike
	Reviews       []Review
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MealLike records one user's like. The unique pair is what makes liking idempotent.
type MealLike struct {
	ID        uint   `gorm:"primaryKey"`
	MealID    uint   `gorm:"not null;uniqueIndex:idx_meal_like_user"`
	UserEmail string `gorm:"not null;uniqueIndex:idx_meal_like_user"`
	CreatedAt time.Time
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	MealID    uint      `gorm:"not null;index" json:"-"`
	Review    string    `gorm:"type:text;not null" json:"review"`
	UserEmail string    `gorm:"index" json:"userEmail"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Reaction struct {
	Count      int      `json:"count"`
	UserEmails []string `json:"userEmails"`
}

type ReviewList struct {
	ReviewCount int      `json:"review_count"`
	Reviews     []Review `json:"reviews"`
}

// MealDocument is the wire shape of a meal.
type MealDocument struct {
	ID uint `json:"_id"`
	MealContent
	Reaction  Reaction   `json:"reaction"`
	Reviews   ReviewList `json:"reviews"`
	Rating    float64    `json:"rating"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (m Meal) Document() MealDocument {
	emails := make([]string, 0, len(m.Likes))
	for _, l := range m.Likes {
		emails = append(emails, l.UserEmail)
	}
	reviews := m.Reviews
	if reviews == nil {
		reviews = []Review{}
	}
	return MealDocument{
		ID:          m.ID,
		MealContent: m.MealContent.normalized(),
		Reaction:    Reaction{Count: m.ReactionCount, UserEmails: emails},
		Reviews:     ReviewList{ReviewCount: m.ReviewCount, Reviews: reviews},
		Rating:      m.Rating,
		CreatedAt:   m.CreatedAt,
	}
}

func (m Meal) MarshalJSON() ([]byte, error) { return json.Marshal(m.Document()) }

func (c MealContent) normalized() MealContent {
	if c.Ingredients == nil {
		c.Ingredients = datatypes.JSONSlice[string]{}
	}
	return c
}
