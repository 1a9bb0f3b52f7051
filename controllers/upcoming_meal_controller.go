package controllers

import (
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type UpcomingMealController struct {
	Meals     *services.MealService
	Reactions *services.ReactionService
}

func NewUpcomingMealController(meals *services.MealService, reactions *services.ReactionService) *UpcomingMealController {
	return &UpcomingMealController{Meals: meals, Reactions: reactions}
}

// ListUpcoming serves GET /upcomingmeals; page is zero-based.
func (h *UpcomingMealController) ListUpcoming(c *gin.Context) {
	page := queryInt(c, "page", 0, 0)
	size := queryInt(c, "size", 10, 1)
	meals, err := h.Meals.ListUpcoming(c.Request.Context(), page*size, size)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *UpcomingMealController) ListAllUpcoming(c *gin.Context) {
	meals, err := h.Meals.ListUpcoming(c.Request.Context(), 0, 0)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *UpcomingMealController) SearchUpcoming(c *gin.Context) {
	meals, err := h.Meals.SearchUpcoming(c.Request.Context(), c.Query("q"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *UpcomingMealController) CountUpcoming(c *gin.Context) {
	n, err := h.Meals.CountUpcoming(c.Request.Context())
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *UpcomingMealController) CreateUpcoming(c *gin.Context) {
	var in services.MealInput
	if !bindJSON(c, &in) {
		return
	}
	meal, err := h.Meals.CreateUpcoming(c.Request.Context(), in)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": meal.ID})
}

func (h *UpcomingMealController) LikeUpcoming(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req likeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	reaction, err := h.Reactions.LikeUpcomingMeal(c.Request.Context(), id, orIdentity(c, req.UserEmail))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal liked successfully", "reaction": reaction})
}

func (h *UpcomingMealController) Publish(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	meal, err := h.Meals.Publish(c.Request.Context(), id)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal published successfully", "insertedId": meal.ID})
}
