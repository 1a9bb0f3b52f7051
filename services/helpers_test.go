package services

import (
	"context"
	"sync"
	"testing"

	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/testutil"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewDB(t)
}

func seedMeal(t *testing.T, db *gorm.DB, c models.MealContent) *models.Meal {
	t.Helper()
	if c.Ingredients == nil {
		c.Ingredients = []string{}
	}
	m := models.Meal{MealContent: c}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func seedUpcoming(t *testing.T, db *gorm.DB, c models.MealContent) *models.UpcomingMeal {
	t.Helper()
	if c.Ingredients == nil {
		c.Ingredients = []string{}
	}
	m := models.UpcomingMeal{MealContent: c}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func reloadMeal(t *testing.T, db *gorm.DB, id uint) models.Meal {
	t.Helper()
	var m models.Meal
	require.NoError(t, db.Scopes(withDocument).First(&m, id).Error)
	return m
}

// recordingPublisher captures events emitted on a bus.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}
