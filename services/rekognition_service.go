package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// LabelDetector is the subset of the Rekognition client we call.
type LabelDetector interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type RekognitionService struct {
	client        LabelDetector
	minConfidence float32
}

func NewRekognitionService(cfg aws.Config, minConfidence float64) *RekognitionService {
	return &RekognitionService{client: rekognition.NewFromConfig(cfg), minConfidence: float32(minConfidence)}
}

var foodLabels = map[string]bool{
	"food": true, "meal": true, "dish": true, "lunch": true, "dinner": true,
	"breakfast": true, "plate": true, "cuisine": true, "bowl": true,
}

// DetectFood reports whether the image shows food, along with the labels seen.
func (r *RekognitionService) DetectFood(ctx context.Context, image []byte) (bool, []string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return false, nil, fmt.Errorf("detect labels: %w", err)
	}

	var (
		labels []string
		food   bool
	)
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		labels = append(labels, name)
		if foodLabels[strings.ToLower(name)] {
			food = true
		}
		for _, cat := range l.Categories {
			if strings.EqualFold(aws.ToString(cat.Name), "Food and Beverage") {
				food = true
			}
		}
	}
	return food, labels, nil
}
