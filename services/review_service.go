package services

import (
	"context"
	"strings"
	"time"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/gorm"
)

type ReviewService struct {
	db     *gorm.DB
	events *EventBus
}

func NewReviewService(db *gorm.DB, events *EventBus) *ReviewService {
	return &ReviewService{db: db, events: events}
}

type ReviewInput struct {
	Review    string `json:"review"`
	UserEmail string `json:"userEmail"`
	Name      string `json:"name"`
}

func mealExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Meal{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("Meal not found")
	}
	return nil
}

// Add appends a review and bumps review_count in one transaction.
func (s *ReviewService) Add(ctx context.Context, mealID uint, in ReviewInput) (*models.Review, error) {
	if strings.TrimSpace(in.Review) == "" {
		return nil, apperror.Validation("Review text is required")
	}

	review := models.Review{
		MealID:    mealID,
		Review:    in.Review,
		UserEmail: in.UserEmail,
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mealExists(tx, mealID); err != nil {
			return err
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&models.Meal{}).Where("id = ?", mealID).
			UpdateColumn("review_count", gorm.Expr("review_count + ?", 1)).Error
	})
	if err != nil {
		return nil, wrapStore(err, "add review to meal %d", mealID)
	}

	s.events.Emit(ctx, Event{Kind: EventMealReviewed, MealID: mealID, UserEmail: in.UserEmail, Data: review})
	return &review, nil
}

// Delete removes the first review the user left on the meal.
func (s *ReviewService) Delete(ctx context.Context, mealID uint, email string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mealExists(tx, mealID); err != nil {
			return err
		}

		var review models.Review
		err := tx.Where("meal_id = ? AND user_email = ?", mealID, email).Order("id ASC").First(&review).Error
		if err != nil {
			return notFoundAs(err, "Review not found for the given user")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return tx.Model(&models.Meal{}).Where("id = ?", mealID).
			UpdateColumn("review_count", gorm.Expr("review_count - ?", 1)).Error
	})
	if err != nil {
		return wrapStore(err, "delete review on meal %d", mealID)
	}

	s.events.Emit(ctx, Event{Kind: EventMealReviewDeleted, MealID: mealID, UserEmail: email})
	return nil
}

// Reset replaces the meal's reviews and sets the counter to count as given.
func (s *ReviewService) Reset(ctx context.Context, mealID uint, count int, reviews []models.Review) (UpdateResult, error) {
	var res UpdateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mealExists(tx, mealID); err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", mealID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if len(reviews) > 0 {
			rows := make([]models.Review, len(reviews))
			for i, r := range reviews {
				rows[i] = models.Review{MealID: mealID, Review: r.Review, UserEmail: r.UserEmail, Name: r.Name, CreatedAt: r.CreatedAt}
				if rows[i].CreatedAt.IsZero() {
					rows[i].CreatedAt = time.Now().UTC()
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		upd := tx.Model(&models.Meal{}).Where("id = ?", mealID).UpdateColumn("review_count", count)
		res = UpdateResult{MatchedCount: upd.RowsAffected, ModifiedCount: upd.RowsAffected}
		return upd.Error
	})
	if err != nil {
		return UpdateResult{}, wrapStore(err, "reset reviews on meal %d", mealID)
	}
	return res, nil
}

// UserReview is a review rendered with the meal it belongs to.
type UserReview struct {
	MealID    uint      `json:"_id"`
	MealTitle string    `json:"mealTitle"`
	Review    string    `json:"review"`
	UserEmail string    `json:"userEmail"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *ReviewService) ByUser(ctx context.Context, email string) ([]UserReview, error) {
	out := []UserReview{}
	err := s.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.meal_id, meals.title AS meal_title, reviews.review, reviews.user_email, reviews.name, reviews.created_at").
		Joins("JOIN meals ON meals.id = reviews.meal_id").
		Where("reviews.user_email = ?", email).
		Order("reviews.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, wrapStore(err, "reviews by %s", email)
	}
	return out, nil
}

// Rate folds a new rating into the stored one as (old + new) / 2 in a
// single statement, then returns the updated meal.
func (s *ReviewService) Rate(ctx context.Context, mealID uint, rating float64) (*models.Meal, error) {
	res := s.db.WithContext(ctx).Model(&models.Meal{}).Where("id = ?", mealID).
		UpdateColumn("rating", gorm.Expr("(rating + ?) / 2", rating))
	if res.Error != nil {
		return nil, wrapStore(res.Error, "rate meal %d", mealID)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("Meal not found")
	}

	var meal models.Meal
	if err := s.db.WithContext(ctx).Scopes(withDocument).First(&meal, mealID).Error; err != nil {
		return nil, wrapStore(notFoundAs(err, "Meal not found"), "load meal %d", mealID)
	}
	s.events.Emit(ctx, Event{Kind: EventMealRated, MealID: mealID, Data: map[string]float64{"rating": meal.Rating}})
	return &meal, nil
}
