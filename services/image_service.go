package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/utils"
)

// ImageStore persists a decoded image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, img *utils.DecodedImage, prefix string) (string, error)
}

// FoodDetector is satisfied by RekognitionService.
type FoodDetector interface {
	DetectFood(ctx context.Context, image []byte) (bool, []string, error)
}

type ImageService struct {
	store    ImageStore
	detector FoodDetector
}

// NewImageService accepts a nil detector to skip the food check.
func NewImageService(store ImageStore, detector FoodDetector) *ImageService {
	return &ImageService{store: store, detector: detector}
}

const mealImagePrefix = "meals"

// UploadMealImage validates a data URI, optionally checks that it shows
// food, and uploads it.
func (s *ImageService) UploadMealImage(ctx context.Context, dataURI string) (string, error) {
	if s == nil || s.store == nil {
		return "", apperror.Internal("image uploads are not configured", nil)
	}
	img, err := utils.DecodeDataURI(dataURI)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}

	if s.detector != nil {
		food, labels, err := s.detector.DetectFood(ctx, img.Data)
		if err != nil {
			return "", apperror.Upstream("image analysis failed", err)
		}
		if !food {
			slog.Info("rejected non-food meal image", "labels", labels)
			return "", apperror.Validation("image does not look like food (labels: " + strings.Join(labels, ", ") + ")")
		}
	}

	url, err := s.store.Upload(ctx, img, mealImagePrefix)
	if err != nil {
		return "", apperror.Upstream("Upload failed", err)
	}
	return url, nil
}
