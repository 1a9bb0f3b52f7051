package controllers

import (
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals     *services.MealService
	Reactions *services.ReactionService
	PageSize  int
}

func NewMealController(meals *services.MealService, reactions *services.ReactionService, pageSize int) *MealController {
	return &MealController{Meals: meals, Reactions: reactions, PageSize: pageSize}
}

// ListMeals serves GET /meals with search, category, price and paging.
func (h *MealController) ListMeals(c *gin.Context) {
	f := services.MealFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		MinPrice: queryFloat(c, "minPrice", 0),
		MaxPrice: queryFloat(c, "maxPrice", services.MaxSafeInteger),
		Page:     queryInt(c, "page", 1, 1),
		Limit:    queryInt(c, "limit", h.PageSize, 1),
	}
	meals, page, err := h.Meals.List(c.Request.Context(), f)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": meals, "pagination": page})
}

func (h *MealController) ListHostelMeals(c *gin.Context) {
	meals, err := h.Meals.ListHostel(c.Request.Context(), c.Query("search"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) SearchMeals(c *gin.Context) {
	meals, err := h.Meals.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// SortedMeals serves GET /mealssorted; page is zero-based.
func (h *MealController) SortedMeals(c *gin.Context) {
	meals, err := h.Meals.Sorted(c.Request.Context(),
		c.Query("sort"),
		queryInt(c, "page", 0, 0),
		queryInt(c, "size", 10, 1),
	)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) GetMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	meal, err := h.Meals.Get(c.Request.Context(), id)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealController) CountMeals(c *gin.Context) {
	n, err := h.Meals.Count(c.Request.Context())
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// ReviewPage serves GET /reviews; page is one-based.
func (h *MealController) ReviewPage(c *gin.Context) {
	page := queryInt(c, "page", 1, 1)
	size := queryInt(c, "size", 10, 1)
	meals, err := h.Meals.Page(c.Request.Context(), (page-1)*size, size)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) AllReviews(c *gin.Context) {
	meals, err := h.Meals.Page(c.Request.Context(), 0, 10)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) CreateMeal(c *gin.Context) {
	var in services.MealInput
	if !bindJSON(c, &in) {
		return
	}
	meal, err := h.Meals.Create(c.Request.Context(), in)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": meal.ID})
}

func (h *MealController) UpdateMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.MealInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Meals.Update(c.Request.Context(), id, in)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MealController) DeleteMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	n, err := h.Meals.Delete(c.Request.Context(), id)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

// AdminData reports how many meals the admin has distributed.
func (h *MealController) AdminData(c *gin.Context) {
	email := c.Query("adminEmail")
	if email == "" {
		middlewares.Fail(c, apperror.Validation("adminEmail is required"))
		return
	}
	n, err := h.Meals.CountByDistributor(c.Request.Context(), email)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mealCount": n})
}

type likeRequest struct {
	UserEmail string `json:"userEmail"`
}

func (h *MealController) LikeMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req likeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	reaction, err := h.Reactions.LikeMeal(c.Request.Context(), id, orIdentity(c, req.UserEmail))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal liked successfully", "reaction": reaction})
}
