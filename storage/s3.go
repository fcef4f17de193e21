package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "rea_scraper/config"
	"rea_scraper/models"
)

// objectPutter is the part of *s3.Client the exporter needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes each run's offers as one NDJSON object, the analytical sink.
type S3Exporter struct {
	client objectPutter
	bucket string
	prefix string
}

func NewS3Exporter(ctx context.Context, cfg appconfig.S3Config) (*S3Exporter, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Exporter{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ObjectKey is {prefix}/{table}/{runName}.ndjson.
func (e *S3Exporter) ObjectKey(table, runName string) string {
	return path.Join(strings.Trim(e.prefix, "/"), table, runName+".ndjson")
}

func (e *S3Exporter) Export(ctx context.Context, table, runName string, offers []models.Offer) error {
	var buf bytes.Buffer
	if err := writeNDJSON(&buf, offers); err != nil {
		return err
	}

	key := e.ObjectKey(table, runName)
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// writeNDJSON writes one flattened offer per line.
func writeNDJSON(w io.Writer, offers []models.Offer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, offer := range offers {
		row := make(map[string]any)
		for _, c := range models.Columns(offer) {
			row[c.Name] = c.Value
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encode %s: %w", offer.OfferURL(), err)
		}
	}
	return nil
}
