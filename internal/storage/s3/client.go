// Package s3 publishes menu snapshots to an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"drinks-service/internal/config"
	"drinks-service/internal/domain/drink"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const (
	emptyAWSSessionToken = ""
	defaultS3Region      = "us-east-1"
	exportPrefix         = "menus"
	exportTimeLayout     = "20060102T150405Z"
	exportContentType    = "application/json"

	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedEncodeMenuFmt       = "failed to encode menu: %w"
	errFailedPutObjectFmt        = "failed to upload menu to s3://%s/%s: %w"
	errFailedPresignFmt          = "failed to generate presigned download URL: %w"
)

// Snapshot is the document written by ExportMenu.
type Snapshot struct {
	ExportedAt time.Time    `json:"exported_at"`
	Drinks     []drink.Long `json:"drinks"`
}

type Client struct {
	svc                s3iface.S3API
	presignedURLExpiry time.Duration
}

// NewClient uses static credentials when both keys are configured and the
// SDK's default chain otherwise.
func NewClient(cfg *config.AWSConfig, presignedURLExpiry time.Duration) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	awsCfg := &aws.Config{Region: aws.String(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return NewClientWithAPI(s3.New(sess), presignedURLExpiry), nil
}

func NewClientWithAPI(svc s3iface.S3API, presignedURLExpiry time.Duration) *Client {
	return &Client{svc: svc, presignedURLExpiry: presignedURLExpiry}
}

// ExportMenu uploads the full recipes of drinks and returns the object key.
func (c *Client) ExportMenu(ctx context.Context, bucket string, drinks []*drink.Drink, now time.Time) (string, error) {
	snapshot := Snapshot{ExportedAt: now.UTC(), Drinks: make([]drink.Long, 0, len(drinks))}
	for _, d := range drinks {
		snapshot.Drinks = append(snapshot.Drinks, d.Long())
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf(errFailedEncodeMenuFmt, err)
	}

	key := BuildExportKey(now)
	_, err = c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(exportContentType),
	})
	if err != nil {
		return "", fmt.Errorf(errFailedPutObjectFmt, bucket, key, err)
	}

	return key, nil
}

func (c *Client) GeneratePresignedDownloadURL(ctx context.Context, bucket, key string) (string, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(c.presignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf(errFailedPresignFmt, err)
	}

	return url, nil
}

func BuildExportKey(now time.Time) string {
	return path.Join(exportPrefix, "menu-"+now.UTC().Format(exportTimeLayout)+".json")
}
