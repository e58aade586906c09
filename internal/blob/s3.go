package blob

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
	"github.com/google/uuid"

	"account-service/internal/config"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader pushes local temp files to an S3-compatible bucket and returns a
// public URL for the stored object. The local file is removed after the
// attempt whether or not the upload succeeded.
type S3Uploader struct {
	client     objectPutter
	bucket     string
	publicBase string
}

func NewS3Uploader(cfg *config.Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	publicBase := cfg.S3PublicBase
	if publicBase == "" {
		publicBase = strings.TrimSuffix(cfg.S3Endpoint, "/")
	}

	return &S3Uploader{
		client:     client,
		bucket:     cfg.S3Bucket,
		publicBase: publicBase,
	}, nil
}

func storageKey(localPath string) string {
	d := time.Now()
	return fmt.Sprintf("assets/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(localPath))
}

func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	defer os.Remove(localPath)

	file, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := storageKey(localPath)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", u.publicBase, u.bucket, key), nil
}
