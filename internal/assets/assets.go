// Package assets stores campaign featured images in S3. Uploads are
// validated by magic bytes, decoded for dimensions, and resized to a
// landing-page hero width before being served from the bucket (or a CDN
// domain in front of it).
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decode support

	appconfig "github.com/prizejet/prizejet/internal/config"
)

// MaxFileSizeMB caps featured image uploads.
const MaxFileSizeMB = 5

// HeroWidth is the widest size a landing page renders; larger originals
// are scaled down before upload.
const HeroWidth = 1200

const jpegQuality = 85

// SupportedImageTypes lists the content types accepted for upload.
var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads featured images and builds their public URLs.
type Store struct {
	s3Client  objectPutter
	bucket    string
	region    string
	cdnDomain string
}

// New creates an S3-backed image store. Returns nil when storage is
// disabled; callers treat a nil store as "uploads unavailable".
func New(ctx context.Context, cfg appconfig.StorageConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Store{
		s3Client:  s3.NewFromConfig(awsCfg),
		bucket:    cfg.S3Bucket,
		region:    cfg.AWSRegion,
		cdnDomain: cfg.CDNDomain,
	}, nil
}

// UploadFeaturedImage validates, resizes and stores one image for a
// campaign, returning its public URL.
func (s *Store) UploadFeaturedImage(ctx context.Context, campaignID string, file io.Reader) (string, error) {
	maxBytes := int64(MaxFileSizeMB*1024*1024) + 1
	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if len(data) > MaxFileSizeMB*1024*1024 {
		return "", fmt.Errorf("file size exceeds maximum of %d MB", MaxFileSizeMB)
	}

	contentType := detectContentType(data)
	if !SupportedImageTypes[contentType] {
		return "", fmt.Errorf("unsupported image type: %s", contentType)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	// WebP has no encoder in the toolchain; resized WebP comes back as JPEG.
	if img.Bounds().Dx() > HeroWidth {
		data, err = resizeImage(img, HeroWidth, format)
		if err != nil {
			return "", fmt.Errorf("resizing image: %w", err)
		}
		contentType = detectContentType(data)
	}

	now := time.Now()
	key := fmt.Sprintf("campaigns/%s/%s/%s%s",
		campaignID, now.Format("2006/01"), uuid.New().String(), getExtension(contentType))

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"), // 1 year cache
	})
	if err != nil {
		return "", fmt.Errorf("uploading to S3: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *Store) publicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func resizeImage(img image.Image, maxWidth int, format string) ([]byte, error) {
	bounds := img.Bounds()
	newHeight := int(float64(bounds.Dy()) * float64(maxWidth) / float64(bounds.Dx()))

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, dst); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func detectContentType(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G' {
		return "image/png"
	}
	if len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return "image/webp"
	}
	return "application/octet-stream"
}

func getExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
