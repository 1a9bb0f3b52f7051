package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/gorm"
)

// StatsCache is satisfied by cache.RedisCache.
type StatsCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type StatsService struct {
	db    *gorm.DB
	cache StatsCache
}

// NewStatsService takes an optional cache; nil computes on every call.
func NewStatsService(db *gorm.DB, cache StatsCache) *StatsService {
	return &StatsService{db: db, cache: cache}
}

type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type ReactionStat struct {
	Count int64  `json:"count"`
	Label string `json:"label"`
}

type Overview struct {
	TotalMeals    int64          `json:"totalMeals"`
	TotalUsers    int64          `json:"totalUsers"`
	TotalReviews  int64          `json:"totalReviews"`
	CategoryStats []CategoryStat `json:"categoryStats"`
	ReactionStats []ReactionStat `json:"reactionStats"`
}

const overviewKey = "stats:overview"

func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	if s.cache != nil {
		var cached Overview
		found, err := s.cache.Get(ctx, overviewKey, &cached)
		if err != nil {
			slog.Warn("stats cache read failed", "err", err)
		} else if found {
			return &cached, nil
		}
	}

	out, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, overviewKey, out); err != nil {
			slog.Warn("stats cache write failed", "err", err)
		}
	}
	return out, nil
}

func (s *StatsService) compute(ctx context.Context) (*Overview, error) {
	db := s.db.WithContext(ctx)
	out := &Overview{CategoryStats: []CategoryStat{}, ReactionStats: []ReactionStat{}}

	if err := db.Model(&models.Meal{}).Count(&out.TotalMeals).Error; err != nil {
		return nil, fmt.Errorf("count meals: %w", err)
	}
	if err := db.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.Meal{}).Select("COALESCE(SUM(review_count), 0)").Scan(&out.TotalReviews).Error; err != nil {
		return nil, fmt.Errorf("sum reviews: %w", err)
	}

	if err := db.Model(&models.Meal{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&out.CategoryStats).Error; err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}

	var reactions []struct {
		ReactionCount int64
		Meals         int64
	}
	if err := db.Model(&models.Meal{}).
		Select("reaction_count, COUNT(*) AS meals").
		Group("reaction_count").
		Order("reaction_count ASC").
		Scan(&reactions).Error; err != nil {
		return nil, fmt.Errorf("reaction stats: %w", err)
	}
	for _, r := range reactions {
		out.ReactionStats = append(out.ReactionStats, ReactionStat{
			Count: r.Meals,
			Label: fmt.Sprintf("Reactions: %d", r.ReactionCount),
		})
	}
	return out, nil
}
