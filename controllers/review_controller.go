package controllers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

func (h *ReviewController) AddReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.ReviewInput
	if !bindOptionalJSON(c, &in) {
		return
	}
	in.UserEmail = orIdentity(c, in.UserEmail)
	if _, err := h.Reviews.Add(c.Request.Context(), id, in); err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, services.UpdateResult{MatchedCount: 1, ModifiedCount: 1})
}

func (h *ReviewController) DeleteReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req likeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if err := h.Reviews.Delete(c.Request.Context(), id, orIdentity(c, req.UserEmail)); err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

type resetReviewsRequest struct {
	ReviewCount int             `json:"review_count"`
	Reviews     []models.Review `json:"reviews"`
}

func (h *ReviewController) ResetReviews(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req resetReviewsRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.Reviews.Reset(c.Request.Context(), id, req.ReviewCount, req.Reviews); err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reviews reset successfully"})
}

func (h *ReviewController) ReviewsByUser(c *gin.Context) {
	reviews, err := h.Reviews.ByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

type ratingRequest struct {
	NewUserRating json.RawMessage `json:"newUserRating"`
	NewRating     json.RawMessage `json:"newRating"`
}

// parseRating accepts a JSON number or a numeric string.
func parseRating(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (h *ReviewController) RateMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ratingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	raw := req.NewUserRating
	if len(raw) == 0 {
		raw = req.NewRating
	}
	rating, ok := parseRating(raw)
	if !ok {
		middlewares.Fail(c, apperror.Validation("Invalid rating value"))
		return
	}
	meal, err := h.Reviews.Rate(c.Request.Context(), id, rating)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}
