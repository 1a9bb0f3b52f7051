package controllers

import (
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// Register inserts a user once per email; repeats are acknowledged, not failed.
func (h *UserController) Register(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, created, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "User already Exist", "insertedId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": u.ID})
}

func (h *UserController) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), c.Query("name"), c.Query("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserController) GetByEmail(c *gin.Context) {
	u, err := h.Users.FindByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserController) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	n, err := h.Users.Delete(c.Request.Context(), id)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

func (h *UserController) MakeAdmin(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.Users.MakeAdmin(c.Request.Context(), id)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserController) IsAdmin(c *gin.Context) {
	admin, err := h.Users.IsAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

func (h *UserController) IsPremium(c *gin.Context) {
	premium, err := h.Users.IsPremium(c.Request.Context(), c.Param("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"premiumMember": premium})
}

type badgeRequest struct {
	UserEmail   string `json:"userEmail"`
	PackageName string `json:"packageName"`
}

func (h *UserController) UpdateBadge(c *gin.Context) {
	var req badgeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	badge, err := h.Users.UpdateBadge(c.Request.Context(), orIdentity(c, req.UserEmail), req.PackageName)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Badge updated successfully.", "badge": badge})
}
