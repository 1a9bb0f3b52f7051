package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aliasrafbd/hostel-management-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache stores JSON like the redis cache does.
type memoryCache struct {
	data    map[string][]byte
	gets    int
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	m.gets++
	if m.failGet {
		return false, errors.New("cache down")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memoryCache) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = raw
	return nil
}

func seedStats(t *testing.T, svc *StatsService) {
	t.Helper()
	for _, m := range []models.Meal{
		{MealContent: models.MealContent{Title: "A", Category: "Lunch"}, ReactionCount: 2, ReviewCount: 3},
		{MealContent: models.MealContent{Title: "B", Category: "Dinner"}, ReactionCount: 0, ReviewCount: 1},
		{MealContent: models.MealContent{Title: "C", Category: "Lunch"}, ReactionCount: 2},
	} {
		require.NoError(t, svc.db.Create(&m).Error)
	}
	require.NoError(t, svc.db.Create(&models.User{Email: "u@x.test"}).Error)
}

func TestStatsService_Overview(t *testing.T) {
	svc := NewStatsService(newTestDB(t), nil)
	seedStats(t, svc)

	got, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, got.TotalMeals)
	assert.EqualValues(t, 1, got.TotalUsers)
	assert.EqualValues(t, 4, got.TotalReviews)
	assert.Equal(t, []CategoryStat{{Category: "Dinner", Count: 1}, {Category: "Lunch", Count: 2}}, got.CategoryStats)
	assert.Equal(t, []ReactionStat{{Count: 1, Label: "Reactions: 0"}, {Count: 2, Label: "Reactions: 2"}}, got.ReactionStats)
}

func TestStatsService_EmptyStore(t *testing.T) {
	svc := NewStatsService(newTestDB(t), nil)

	got, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.TotalReviews)
	assert.NotNil(t, got.CategoryStats)
	assert.Empty(t, got.ReactionStats)
}

func TestStatsService_ServesFromCache(t *testing.T) {
	cache := &memoryCache{}
	svc := NewStatsService(newTestDB(t), cache)
	seedStats(t, svc)
	ctx := context.Background()

	first, err := svc.Overview(ctx)
	require.NoError(t, err)

	// rows written after the first call are not visible until the entry expires
	require.NoError(t, svc.db.Create(&models.Meal{MealContent: models.MealContent{Title: "D"}}).Error)

	second, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TotalMeals, second.TotalMeals)
	assert.Equal(t, 2, cache.gets)
}

func TestStatsService_CacheErrorFallsBackToStore(t *testing.T) {
	svc := NewStatsService(newTestDB(t), &memoryCache{failGet: true})
	seedStats(t, svc)

	got, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.TotalMeals)
}
