// Package archive copies finished invoices to S3-compatible object storage
// (AWS S3, Cloudflare R2, MinIO). Archiving is always an explicit request;
// saving an invoice never uploads anything.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// Config selects the bucket. Archiving is disabled when Bucket is empty.
type Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool { return c.Bucket != "" }

// ObjectPutter is the slice of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver uploads invoice records and PDFs under <prefix>/<number>/.
type Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

// New wraps an existing client.
func New(client ObjectPutter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix}
}

// NewS3 builds an S3 client from cfg. Static keys are used when given,
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg Config) (*Archiver, error) {
	if !cfg.Enabled() {
		return nil, apperr.Validation("archive.bucket", "archiving is not configured")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure object storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// Key returns the object key for a file belonging to invoice number.
func (a *Archiver) Key(number, name string) string {
	return path.Join(a.prefix, number, name)
}

// Upload puts one object.
func (a *Archiver) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return apperr.Storage("archive", key, fmt.Errorf("failed to upload to bucket %s: %w", a.bucket, err))
	}
	return nil
}

// ArchiveInvoice uploads the JSON record and the rendered PDF and returns
// the object keys written.
func (a *Archiver) ArchiveInvoice(ctx context.Context, snap *models.Snapshot, pdf []byte) ([]string, error) {
	record, err := storage.Encode(snap)
	if err != nil {
		return nil, err
	}

	name := storage.RecordName(snap.InvoiceNumber)
	objects := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{a.Key(snap.InvoiceNumber, name+".json"), record, "application/json"},
		{a.Key(snap.InvoiceNumber, name+".pdf"), pdf, "application/pdf"},
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if err := a.Upload(ctx, obj.key, obj.body, obj.contentType); err != nil {
			return keys, err
		}
		keys = append(keys, obj.key)
	}

	slog.Info("Invoice archived", "invoice_number", snap.InvoiceNumber, "bucket", a.bucket, "keys", keys)
	return keys, nil
}
