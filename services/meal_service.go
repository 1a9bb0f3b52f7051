package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/gorm"
)

type MealService struct {
	db                   *gorm.DB
	events               *EventBus
	transactionalPublish bool
}

func NewMealService(db *gorm.DB, events *EventBus, transactionalPublish bool) *MealService {
	return &MealService{db: db, events: events, transactionalPublish: transactionalPublish}
}

// MealInput is the writable content of a meal or upcoming meal.
type MealInput struct {
	Title            string   `json:"title" binding:"required"`
	Category         string   `json:"category"`
	Ingredients      []string `json:"ingredients"`
	Description      string   `json:"description"`
	Price            float64  `json:"price" binding:"gte=0"`
	Image            string   `json:"image"`
	PostTime         string   `json:"postTime"`
	DistributorEmail string   `json:"distributorEmail"`
	DistributorName  string   `json:"distributorName"`
}

func (in MealInput) content() models.MealContent {
	ingredients := in.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return models.MealContent{
		Title:            in.Title,
		Category:         in.Category,
		Ingredients:      ingredients,
		Description:      in.Description,
		Price:            in.Price,
		Image:            in.Image,
		PostTime:         in.PostTime,
		DistributorEmail: in.DistributorEmail,
		DistributorName:  in.DistributorName,
	}
}

// ---------- Listing ----------

// substring search on GET /meals and /meals/hostel
var listingSearchColumns = []string{
	"title", "category", "description", models.IngredientsColumn, "post_time", "CAST(price AS TEXT)",
}

type MealFilter struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64
	Page     int
	Limit    int
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func (s *MealService) filtered(ctx context.Context, f MealFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Meal{})
	if f.Search != "" {
		q = anyColumnContains(q, listingSearchColumns, f.Search)
	}
	if f.Category != "" {
		q = q.Where(`LOWER(category) LIKE ? ESCAPE '\'`, containsPattern(f.Category))
	}
	return q.Where("price >= ? AND price <= ?", f.MinPrice, f.MaxPrice)
}

// List returns one page of meals matching f plus the pagination summary.
func (s *MealService) List(ctx context.Context, f MealFilter) ([]models.Meal, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
	if f.MaxPrice == 0 {
		f.MaxPrice = MaxSafeInteger
	}
	page := Pagination{Page: f.Page, Limit: f.Limit}

	if err := s.filtered(ctx, f).Count(&page.Total).Error; err != nil {
		return nil, page, fmt.Errorf("count meals: %w", err)
	}
	page.TotalPages = int(math.Ceil(float64(page.Total) / float64(f.Limit)))

	meals := []models.Meal{}
	err := s.filtered(ctx, f).
		Scopes(withDocument).
		Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&meals).Error
	if err != nil {
		return nil, page, fmt.Errorf("list meals: %w", err)
	}
	return meals, page, nil
}

// ListHostel is the unpaginated substring search.
func (s *MealService) ListHostel(ctx context.Context, search string) ([]models.Meal, error) {
	q := s.db.WithContext(ctx).Scopes(withDocument)
	if search != "" {
		q = anyColumnContains(q, listingSearchColumns, search)
	}
	meals := []models.Meal{}
	if err := q.Order("id ASC").Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("list hostel meals: %w", err)
	}
	return meals, nil
}

// Page returns meals in insertion order, used by the review screens.
func (s *MealService) Page(ctx context.Context, offset, limit int) ([]models.Meal, error) {
	meals := []models.Meal{}
	err := s.db.WithContext(ctx).
		Scopes(withDocument).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("page meals: %w", err)
	}
	return meals, nil
}

var sortOrders = map[string]string{
	"reaction": "reaction_count DESC",
	"reviews":  "review_count DESC",
	"rating":   "rating DESC",
}

// Sorted lists meals by the given mode. Unknown modes keep insertion order.
func (s *MealService) Sorted(ctx context.Context, mode string, page, size int) ([]models.Meal, error) {
	order := "id ASC"
	if o, ok := sortOrders[mode]; ok {
		order = o + ", id ASC"
	}
	meals := []models.Meal{}
	err := s.db.WithContext(ctx).
		Scopes(withDocument).
		Order(order).
		Offset(page * size).
		Limit(size).
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("sorted meals: %w", err)
	}
	return meals, nil
}

// ---------- Full-text search ----------

// textSearch restricts q to rows whose curated fields match any word of
// term. Postgres uses the indexed tsvector; other dialects fall back to
// substring matching per word.
func textSearch(q *gorm.DB, term string) *gorm.DB {
	words := strings.Fields(term)
	if q.Dialector.Name() == "postgres" {
		parts := make([]string, len(words))
		args := make([]any, len(words))
		for i, w := range words {
			parts[i] = "plainto_tsquery('english', ?)"
			args[i] = w
		}
		return q.Where(models.SearchVector+" @@ ("+strings.Join(parts, " || ")+")", args...)
	}

	group := q.Session(&gorm.Session{NewDB: true})
	for i, w := range words {
		cond := anyColumnContains(q.Session(&gorm.Session{NewDB: true}), models.SearchColumns, w)
		if i == 0 {
			group = group.Where(cond)
		} else {
			group = group.Or(cond)
		}
	}
	return q.Where(group)
}

func (s *MealService) Search(ctx context.Context, term string) ([]models.Meal, error) {
	meals := []models.Meal{}
	if strings.TrimSpace(term) == "" {
		return meals, nil
	}
	q := s.db.WithContext(ctx).Model(&models.Meal{})
	if err := textSearch(q, term).Scopes(withDocument).Order("id ASC").Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("search meals: %w", err)
	}
	return meals, nil
}

func (s *MealService) SearchUpcoming(ctx context.Context, term string) ([]models.UpcomingMeal, error) {
	meals := []models.UpcomingMeal{}
	if strings.TrimSpace(term) == "" {
		return meals, nil
	}
	q := s.db.WithContext(ctx).Model(&models.UpcomingMeal{})
	if err := textSearch(q, term).Scopes(withLikes).Order("id ASC").Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("search upcoming meals: %w", err)
	}
	return meals, nil
}

// ---------- Single meal & counts ----------

func (s *MealService) Get(ctx context.Context, id uint) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).Scopes(withDocument).First(&meal, id).Error; err != nil {
		return nil, notFoundAs(err, "Meal not found")
	}
	return &meal, nil
}

func (s *MealService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Meal{}).Count(&n).Error
	return n, err
}

// CountByDistributor counts meals distributed by email.
func (s *MealService) CountByDistributor(ctx context.Context, email string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Meal{}).Where("distributor_email = ?", email).Count(&n).Error
	return n, err
}

// ---------- Administration ----------

func (s *MealService) Create(ctx context.Context, in MealInput) (*models.Meal, error) {
	meal := models.Meal{MealContent: in.content()}
	if err := s.db.WithContext(ctx).Omit("Likes", "Reviews").Create(&meal).Error; err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	return &meal, nil
}

// UpdateResult mirrors the matched/modified counters clients expect.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

var mealContentFields = []string{
	"Title", "Category", "Ingredients", "Description", "Price", "Image", "PostTime",
	"DistributorEmail", "DistributorName",
}

// Update overwrites the content fields, including zero values.
func (s *MealService) Update(ctx context.Context, id uint, in MealInput) (UpdateResult, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("id = ?", id).
		Select(mealContentFields).
		Updates(models.Meal{MealContent: in.content()})
	if res.Error != nil {
		return UpdateResult{}, fmt.Errorf("update meal: %w", res.Error)
	}
	return UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

// Delete removes a meal together with its likes and reviews.
func (s *MealService) Delete(ctx context.Context, id uint) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_id = ?", id).Delete(&models.MealLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Meal{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete meal: %w", err)
	}
	return deleted, nil
}

// ---------- Upcoming meals ----------

func (s *MealService) CreateUpcoming(ctx context.Context, in MealInput) (*models.UpcomingMeal, error) {
	meal := models.UpcomingMeal{MealContent: in.content()}
	if err := s.db.WithContext(ctx).Omit("Likes").Create(&meal).Error; err != nil {
		return nil, fmt.Errorf("create upcoming meal: %w", err)
	}
	return &meal, nil
}

// ListUpcoming returns upcoming meals in insertion order. limit < 1 means all.
func (s *MealService) ListUpcoming(ctx context.Context, offset, limit int) ([]models.UpcomingMeal, error) {
	q := s.db.WithContext(ctx).Scopes(withLikes).Order("id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	meals := []models.UpcomingMeal{}
	if err := q.Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("list upcoming meals: %w", err)
	}
	return meals, nil
}

func (s *MealService) CountUpcoming(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UpcomingMeal{}).Count(&n).Error
	return n, err
}

// Publish moves an upcoming meal into the meals table. The published meal
// gets a new id; content, counters and likes are carried over.
func (s *MealService) Publish(ctx context.Context, id uint) (*models.Meal, error) {
	var (
		meal *models.Meal
		err  error
	)
	if s.transactionalPublish {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			meal, err = publish(tx, id)
			return err
		})
	} else {
		meal, err = publish(s.db.WithContext(ctx), id)
	}
	if err != nil {
		return nil, wrapStore(err, "publish meal %d", id)
	}

	s.events.Emit(ctx, Event{Kind: EventMealPublished, MealID: meal.ID, Data: map[string]any{"upcomingId": id}})
	return meal, nil
}

func publish(tx *gorm.DB, id uint) (*models.Meal, error) {
	var up models.UpcomingMeal
	if err := tx.Scopes(withLikes).First(&up, id).Error; err != nil {
		return nil, notFoundAs(err, "Meal not found")
	}

	meal := models.Meal{
		MealContent:   up.MealContent,
		ReactionCount: up.ReactionCount,
		ReviewCount:   up.ReviewCount,
		Rating:        up.Rating,
	}
	for _, l := range up.Likes {
		meal.Likes = append(meal.Likes, models.MealLike{UserEmail: l.UserEmail})
	}
	if err := tx.Create(&meal).Error; err != nil {
		return nil, fmt.Errorf("insert meal: %w", err)
	}

	if err := tx.Where("upcoming_meal_id = ?", id).Delete(&models.UpcomingMealLike{}).Error; err != nil {
		return nil, fmt.Errorf("delete upcoming likes: %w", err)
	}
	if err := tx.Delete(&models.UpcomingMeal{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete upcoming meal: %w", err)
	}
	return &meal, nil
}
