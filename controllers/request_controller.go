package controllers

import (
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type RequestController struct {
	Requests *services.RequestService
	Users    *services.UserService
}

func NewRequestController(requests *services.RequestService, users *services.UserService) *RequestController {
	return &RequestController{Requests: requests, Users: users}
}

func (h *RequestController) CreateRequest(c *gin.Context) {
	var in services.RequestInput
	if !bindJSON(c, &in) {
		return
	}
	in.UserEmail = orIdentity(c, in.UserEmail)
	req, err := h.Requests.Create(c.Request.Context(), in)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": req.ID})
}

// ListRequests is the admin view: name substring, exact email.
func (h *RequestController) ListRequests(c *gin.Context) {
	reqs, err := h.Requests.List(c.Request.Context(), services.RequestFilter{
		Name:       c.Query("name"),
		UserEmail:  c.Query("userEmail"),
		ExactEmail: true,
	})
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *RequestController) RequestsByUser(c *gin.Context) {
	reqs, err := h.Requests.ListByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// DeleteRequest lets the requester or an admin withdraw a request.
func (h *RequestController) DeleteRequest(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	req, err := h.Requests.Get(ctx, id)
	if apperror.IsKind(err, apperror.KindNotFound) {
		c.JSON(http.StatusOK, gin.H{"deletedCount": 0})
		return
	}
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	if req.UserEmail != middlewares.IdentityEmail(c) {
		admin, err := h.Users.IsAdmin(ctx, middlewares.IdentityEmail(c))
		if err != nil {
			middlewares.Fail(c, err)
			return
		}
		if !admin {
			middlewares.Fail(c, apperror.Forbidden("forbidden access"))
			return
		}
	}

	n, err := h.Requests.Delete(ctx, id)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

// ServedMeals pages over requests for the serving screen.
func (h *RequestController) ServedMeals(c *gin.Context) {
	reqs, total, err := h.Requests.Served(c.Request.Context(),
		services.RequestFilter{Name: c.Query("name"), UserEmail: c.Query("userEmail")},
		queryInt(c, "page", 1, 1),
		queryInt(c, "size", 10, 1),
	)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": reqs, "totalCount": total})
}

func (h *RequestController) CountRequests(c *gin.Context) {
	n, err := h.Requests.Count(c.Request.Context())
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *RequestController) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.Requests.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal status updated successfully."})
}

type servedMealsRequest struct {
	Meals []models.ServedMeal `json:"meals" binding:"required"`
}

func (h *RequestController) InsertServed(c *gin.Context) {
	var req servedMealsRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.Requests.InsertServed(c.Request.Context(), req.Meals)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Meals inserted successfully", "insertedCount": n})
}
