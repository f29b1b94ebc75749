package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/google/uuid"
)

// S3Config is injected once at construction and never changes afterwards.
type S3Config struct {
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// ObjectPutter is the part of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// seams for tests
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Uploader stores files in a single bucket and returns their public URL.
type S3Uploader struct {
	client ObjectPutter
	cfg    S3Config
	logger logging.Logger
	now    func() time.Time
}

// NewS3Uploader builds an S3 client with static credentials and a custom
// endpoint (path-style addressing, so MinIO works out of the box).
func NewS3Uploader(ctx context.Context, cfg S3Config, logger logging.Logger) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return NewS3UploaderWithClient(client, cfg, logger), nil
}

// NewS3UploaderWithClient is NewS3Uploader with a caller-supplied client.
func NewS3UploaderWithClient(client ObjectPutter, cfg S3Config, logger logging.Logger) *S3Uploader {
	return &S3Uploader{
		client: client,
		cfg:    cfg,
		logger: logger.With("module", "media"),
		now:    time.Now,
	}
}

func (u *S3Uploader) Upload(ctx context.Context, localPath string) *UploadResult {
	if localPath == "" {
		u.logger.Warn(ctx, "upload skipped: empty path")
		return nil
	}

	defer func() {
		if err := filex.RemoveIfExists(localPath); err != nil {
			u.logger.Warn(ctx, "temp file cleanup failed", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		u.logger.Error(ctx, "upload failed: open", "path", localPath, "error", err)
		return nil
	}
	defer f.Close()

	key := u.objectKey(localPath)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(detectContentType(localPath)),
	})
	if err != nil {
		u.logger.Error(ctx, "upload failed: put object", "key", key, "error", err)
		return nil
	}

	u.logger.Debug(ctx, "uploaded", "key", key)

	return &UploadResult{URL: u.publicURL(key), Key: key}
}

func (u *S3Uploader) objectKey(localPath string) string {
	now := u.now().UTC()
	ext := strings.ToLower(filepath.Ext(localPath))
	return fmt.Sprintf("uploads/%d/%d/%d/%s%s", now.Year(), int(now.Month()), now.Day(), uuid.NewString(), ext)
}

func (u *S3Uploader) publicURL(key string) string {
	return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + u.cfg.Bucket + "/" + key
}
