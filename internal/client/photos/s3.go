// Package photos stores contact photos in an S3-compatible bucket.
package photos

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/filex"
	"github.com/dmitrijs2005/dragoncontacts/internal/netx"
	"github.com/google/uuid"
)

const (
	MaxPhotoSize   = 5 << 20
	presignExpires = 15 * time.Minute
	sniffLen       = 512
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Options locates the bucket. BaseEndpoint may point at MinIO or another
// S3-compatible service.
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// Enabled reports whether a bucket is configured.
func (o Options) Enabled() bool {
	return o.Bucket != ""
}

// S3Store uploads photos through presigned PUT requests and hands out
// presigned GET links.
type S3Store struct {
	opts Options
	http *http.Client
}

func NewS3Store(opts Options, hc *http.Client) *S3Store {
	return &S3Store{opts: opts, http: hc}
}

func (s *S3Store) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKey,
			s.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// ObjectKey builds the storage key of a new photo of contactID.
func ObjectKey(contactID, path string) string {
	return fmt.Sprintf("contacts/%s/%s%s", contactID, uuid.NewString(), strings.ToLower(filepath.Ext(path)))
}

// Upload stores the image at path for contactID and returns its object key.
// Files that are not images or exceed MaxPhotoSize are rejected.
func (s *S3Store) Upload(ctx context.Context, contactID, path string) (string, error) {
	data, err := filex.ReadFileLimited(path, MaxPhotoSize)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", common.ValidationError("photo", "file is not an image ("+contentType+")")
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	key := ObjectKey(contactID, path)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := netx.PutBytes(ctx, s.http, req.URL, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// URL returns a temporary download link for key.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}
