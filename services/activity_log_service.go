package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/gorm"
)

// ActivityLogService persists user-facing events so clients can show a
// history feed. It is registered on the EventBus as a publisher.
type ActivityLogService struct {
	db *gorm.DB
}

func NewActivityLogService(db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: db}
}

// Publish stores e when it names a user; other events are skipped.
func (s *ActivityLogService) Publish(ctx context.Context, e Event) error {
	if e.UserEmail == "" {
		return nil
	}
	var data []byte
	if e.Data != nil {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("encode activity data: %w", err)
		}
		data = raw
	}
	row := models.ActivityLog{
		UserEmail: e.UserEmail,
		Kind:      e.Kind,
		MealID:    e.MealID,
		Data:      data,
		CreatedAt: e.At,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Recent returns the newest entries for email, at most limit.
func (s *ActivityLogService) Recent(ctx context.Context, email string, limit int) ([]models.ActivityLog, error) {
	out := []models.ActivityLog{}
	err := s.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrapStore(err, "activity for %s", email)
	}
	return out, nil
}
