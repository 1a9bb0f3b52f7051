package controllers

import (
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type ImageUploadRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type ImageController struct {
	Svc *services.ImageService
}

func NewImageController(svc *services.ImageService) *ImageController {
	return &ImageController{Svc: svc}
}

func (h *ImageController) UploadMealImage(c *gin.Context) {
	var req ImageUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.Svc.UploadMealImage(c.Request.Context(), req.ImageBase64)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
