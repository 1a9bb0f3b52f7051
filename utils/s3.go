package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// DecodedImage is a data URI split into its parts.
type DecodedImage struct {
	ContentType string
	Ext         string
	Data        []byte
}

// DecodeDataURI parses "data:<mime>;base64,<data>".
func DecodeDataURI(dataURI string) (*DecodedImage, error) {
	meta, data, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("invalid base64 image")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	var ext string
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = "." + strings.TrimPrefix(contentType, "image/")
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &DecodedImage{ContentType: contentType, Ext: ext, Data: raw}, nil
}

// S3Uploader stores meal images in a public bucket fronted by CloudFront.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Uploader(cfg aws.Config, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{client: s3.NewFromConfig(cfg), bucket: bucket, baseURL: baseURL}
}

// Upload writes the image under prefix and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, img *DecodedImage, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), img.Ext)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("%s/%s", u.baseURL, key), nil
}
