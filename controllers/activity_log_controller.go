package controllers

import (
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	Svc *services.ActivityLogService
}

func NewActivityController(svc *services.ActivityLogService) *ActivityController {
	return &ActivityController{Svc: svc}
}

// Recent handles GET /activity/:email?limit=
func (h *ActivityController) Recent(c *gin.Context) {
	limit := queryInt(c, "limit", 20, 1)
	if limit > 100 {
		limit = 100
	}
	logs, err := h.Svc.Recent(c.Request.Context(), c.Param("email"), limit)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
