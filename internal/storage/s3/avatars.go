// Package s3 issues presigned URLs for profile avatars.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"colors-app-go/internal/config"
)

const defaultPresignTTL = 5 * time.Minute

var ErrUnsupportedContentType = errors.New("unsupported avatar content type")

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type Upload struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Avatars struct {
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	ttl       time.Duration
	now       func() time.Time
}

// NewAvatars loads AWS credentials from the default chain.
func NewAvatars(ctx context.Context, cfg config.AvatarsConfig) (*Avatars, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewAvatarsWithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

func NewAvatarsWithClient(client *s3.Client, cfg config.AvatarsConfig) *Avatars {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	if prefix == "" {
		prefix = "avatars"
	}
	return &Avatars{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefix:    prefix,
		ttl:       ttl,
		now:       time.Now,
	}
}

// PresignUpload returns a PUT URL for a new avatar object owned by userID.
func (a *Avatars) PresignUpload(ctx context.Context, userID, contentType string) (*Upload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrUnsupportedContentType
	}

	key := fmt.Sprintf("%s/%s/%s.%s", a.prefix, userID, uuid.NewString(), ext)
	request, err := a.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(a.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign avatar upload: %w", err)
	}

	return &Upload{
		URL:       request.URL,
		Key:       key,
		Method:    request.Method,
		ExpiresAt: a.now().Add(a.ttl).UTC(),
	}, nil
}

// PresignRead returns a GET URL for an avatar key.
func (a *Avatars) PresignRead(ctx context.Context, key string) (string, error) {
	request, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.ttl))
	if err != nil {
		return "", fmt.Errorf("presign avatar read: %w", err)
	}
	return request.URL, nil
}

// OwnsKey reports whether key was issued to userID by PresignUpload.
func (a *Avatars) OwnsKey(userID, key string) bool {
	return strings.HasPrefix(key, a.prefix+"/"+userID+"/")
}
