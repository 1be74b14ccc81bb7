// Package storage hands out presigned URLs so clients upload opportunity
// images straight to an S3-compatible bucket.
package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/config"
)

const defaultUploadExpiry = 15 * time.Minute

// Accepted image types and the extension stored with each.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadRequest struct {
	Filename    string `json:"nome_arquivo"`
	ContentType string `json:"content_type"`
}

type Upload struct {
	UploadURL string            `json:"upload_url"`
	Key       string            `json:"file_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

type ImageStore struct {
	cfg     config.StorageConfig
	presign *s3.PresignClient
	now     func() time.Time
}

// NewImageStore builds the S3 client. It returns nil when no bucket is
// configured.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.UploadExpiry <= 0 {
		cfg.UploadExpiry = defaultUploadExpiry
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &ImageStore{cfg: cfg, presign: s3.NewPresignClient(client), now: time.Now}, nil
}

// PresignImage validates the request and returns a presigned PUT for a new,
// uniquely named object.
func (s *ImageStore) PresignImage(ctx context.Context, req UploadRequest) (*Upload, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, errors.New(errors.ErrValidation, "Tipo de imagem não suportado: use JPEG, PNG, WebP ou GIF")
	}
	key := s.objectKey(ext)

	signed, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.UploadExpiry))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "presign image upload")
	}

	headers := map[string]string{"Content-Type": contentType}
	for k, v := range signed.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Upload{
		UploadURL: signed.URL,
		Key:       key,
		FileURL:   s.publicURL(key),
		ExpiresAt: s.now().Add(s.cfg.UploadExpiry).UTC(),
		Method:    signed.Method,
		Headers:   headers,
	}, nil
}

func (s *ImageStore) objectKey(ext string) string {
	return strings.TrimLeft(path.Join(strings.Trim(s.cfg.Prefix, "/"), uuid.NewString()+ext), "/")
}

// publicURL prefers base_url, then the custom endpoint, then the AWS
// virtual-hosted address.
func (s *ImageStore) publicURL(key string) string {
	if base := strings.TrimRight(s.cfg.BaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if endpoint := strings.TrimRight(s.cfg.Endpoint, "/"); endpoint != "" {
		if s.cfg.UsePathStyle {
			return endpoint + "/" + s.cfg.Bucket + "/" + key
		}
		return endpoint + "/" + key
	}
	return "https://" + s.cfg.Bucket + ".s3." + s.cfg.Region + ".amazonaws.com/" + key
}
