package services

import (
	"context"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionService records likes. A like is terminal: the unique
// (meal, user) index turns a second like into a Conflict, and the counter
// moves in the same transaction as the insert.
type ReactionService struct {
	db     *gorm.DB
	events *EventBus
}

func NewReactionService(db *gorm.DB, events *EventBus) *ReactionService {
	return &ReactionService{db: db, events: events}
}

const msgAlreadyLiked = "User has already liked this meal"

type likeTarget struct {
	table     string
	likeTable string
	fk        string
	newLike   func(id uint, email string) any
}

var (
	mealLikes = likeTarget{
		table:     "meals",
		likeTable: "meal_likes",
		fk:        "meal_id",
		newLike:   func(id uint, email string) any { return &models.MealLike{MealID: id, UserEmail: email} },
	}
	upcomingLikes = likeTarget{
		table:     "upcoming_meals",
		likeTable: "upcoming_meal_likes",
		fk:        "upcoming_meal_id",
		newLike: func(id uint, email string) any {
			return &models.UpcomingMealLike{UpcomingMealID: id, UserEmail: email}
		},
	}
)

func (s *ReactionService) LikeMeal(ctx context.Context, mealID uint, email string) (*models.Reaction, error) {
	r, err := s.like(ctx, mealLikes, mealID, email)
	if err != nil {
		return nil, err
	}
	s.events.Emit(ctx, Event{Kind: EventMealLiked, MealID: mealID, UserEmail: email, Data: r})
	return r, nil
}

func (s *ReactionService) LikeUpcomingMeal(ctx context.Context, id uint, email string) (*models.Reaction, error) {
	return s.like(ctx, upcomingLikes, id, email)
}

func (s *ReactionService) like(ctx context.Context, t likeTarget, id uint, email string) (*models.Reaction, error) {
	if email == "" {
		return nil, apperror.Validation("userEmail is required")
	}

	var reaction models.Reaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counts []int
		if err := tx.Table(t.table).Where("id = ?", id).Pluck("reaction_count", &counts).Error; err != nil {
			return err
		}
		if len(counts) == 0 {
			return apperror.NotFound("Meal not found")
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(t.newLike(id, email))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict(msgAlreadyLiked)
		}

		if err := tx.Table(t.table).Where("id = ?", id).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count + ?", 1)).Error; err != nil {
			return err
		}

		counts = counts[:0]
		if err := tx.Table(t.table).Where("id = ?", id).Pluck("reaction_count", &counts).Error; err != nil {
			return err
		}
		reaction.Count = counts[0]
		reaction.UserEmails = []string{}
		return tx.Table(t.likeTable).Where(t.fk+" = ?", id).Order("id ASC").
			Pluck("user_email", &reaction.UserEmails).Error
	})
	if err != nil {
		return nil, wrapStore(err, "like %d", id)
	}
	return &reaction, nil
}
