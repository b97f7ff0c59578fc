package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BgmResolver turns a room's background-music reference into a playable URL.
type BgmResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

const bgmURLExpiry = time.Hour

// BgmService resolves BGM object keys in the media bucket to presigned read
// URLs. Keys that are already full URLs pass through untouched.
type BgmService struct {
	Presigner *s3.PresignClient
	Bucket    string
}

// NewBgmService creates a resolver against the given S3 client and bucket.
func NewBgmService(client *s3.Client, bucket string) *BgmService {
	return &BgmService{
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

func (bs *BgmService) ResolveURL(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	presigned, err := bs.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bs.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(bgmURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign bgm object '%s': %w", key, err)
	}
	return presigned.URL, nil
}
