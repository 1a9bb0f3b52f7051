package services

import (
	"context"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestService manages meal requests and the served-meal log.
type RequestService struct {
	db     *gorm.DB
	events *EventBus
	mailer Notifier
}

func NewRequestService(db *gorm.DB, events *EventBus, mailer Notifier) *RequestService {
	return &RequestService{db: db, events: events, mailer: mailer}
}

type RequestInput struct {
	MealID      uint    `json:"mealId" binding:"required"`
	UserEmail   string  `json:"userEmail"`
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Likes       int     `json:"likes"`
	ReviewCount int     `json:"reviewCount"`
	Status      string  `json:"status"`
}

const msgAlreadyRequested = "You have already requested this meal."

// Create stores a request. A second request for the same meal by the same
// user is a Conflict.
func (s *RequestService) Create(ctx context.Context, in RequestInput) (*models.RequestedMeal, error) {
	if in.UserEmail == "" {
		return nil, apperror.Validation("userEmail is required")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.RequestStatusPending
	}
	req := models.RequestedMeal{
		MealID:      in.MealID,
		UserEmail:   in.UserEmail,
		Name:        in.Name,
		Title:       in.Title,
		Category:    in.Category,
		Price:       in.Price,
		Image:       in.Image,
		Likes:       in.Likes,
		ReviewCount: in.ReviewCount,
		Status:      status,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mealExists(tx, in.MealID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&req)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict(msgAlreadyRequested)
		}
		return nil
	})
	if err != nil {
		return nil, wrapStore(err, "request meal %d", in.MealID)
	}
	return &req, nil
}

func (s *RequestService) Get(ctx context.Context, id uint) (*models.RequestedMeal, error) {
	var req models.RequestedMeal
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, wrapStore(notFoundAs(err, "Requested meal not found"), "get request %d", id)
	}
	return &req, nil
}

// RequestFilter narrows request listings. Empty fields match everything.
type RequestFilter struct {
	Name       string
	UserEmail  string
	ExactEmail bool
}

func (f RequestFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Name != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(f.Name))
	}
	if f.UserEmail != "" {
		if f.ExactEmail {
			q = q.Where("user_email = ?", f.UserEmail)
		} else {
			q = q.Where(`LOWER(user_email) LIKE ? ESCAPE '\'`, containsPattern(f.UserEmail))
		}
	}
	return q
}

func (s *RequestService) List(ctx context.Context, f RequestFilter) ([]models.RequestedMeal, error) {
	out := []models.RequestedMeal{}
	if err := f.apply(s.db.WithContext(ctx)).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapStore(err, "list requests")
	}
	return out, nil
}

func (s *RequestService) ListByUser(ctx context.Context, email string) ([]models.RequestedMeal, error) {
	return s.List(ctx, RequestFilter{UserEmail: email, ExactEmail: true})
}

// Served pages over requests for the serving screen; page is one-based.
func (s *RequestService) Served(ctx context.Context, f RequestFilter, page, size int) ([]models.RequestedMeal, int64, error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := f.apply(s.db.WithContext(ctx).Model(&models.RequestedMeal{})).Count(&total).Error; err != nil {
		return nil, 0, wrapStore(err, "count served")
	}
	out := []models.RequestedMeal{}
	err := f.apply(s.db.WithContext(ctx)).Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&out).Error
	if err != nil {
		return nil, 0, wrapStore(err, "list served")
	}
	return out, total, nil
}

func (s *RequestService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RequestedMeal{}).Count(&n).Error
	return n, err
}

func (s *RequestService) Delete(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&models.RequestedMeal{}, id)
	if res.Error != nil {
		return 0, wrapStore(res.Error, "delete request %d", id)
	}
	return res.RowsAffected, nil
}

const msgRequestUnchanged = "Meal not found or already updated."

// UpdateStatus changes a request's status and tells the requester. Setting
// the status it already has counts as not found.
func (s *RequestService) UpdateStatus(ctx context.Context, id uint, status string) (*models.RequestedMeal, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperror.Validation("status is required")
	}

	res := s.db.WithContext(ctx).Model(&models.RequestedMeal{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	if res.Error != nil {
		return nil, wrapStore(res.Error, "update request %d", id)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound(msgRequestUnchanged)
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	subject, body := utils.RequestStatusEmail(req.Title, req.Status)
	notify(ctx, s.mailer, req.UserEmail, subject, body)
	s.events.Emit(ctx, Event{
		Kind:      EventRequestStatusChanged,
		MealID:    req.MealID,
		UserEmail: req.UserEmail,
		Data:      map[string]any{"requestId": req.ID, "status": req.Status},
	})
	return req, nil
}

// InsertServed appends served-meal snapshots.
func (s *RequestService) InsertServed(ctx context.Context, meals []models.ServedMeal) (int, error) {
	if len(meals) == 0 {
		return 0, apperror.Validation("meals must be a non-empty array")
	}
	for i := range meals {
		meals[i].ID = 0
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&meals, 100).Error; err != nil {
		return 0, wrapStore(err, "insert served meals")
	}
	return len(meals), nil
}
