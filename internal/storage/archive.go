package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ignite/deliverability-engine/internal/domain"
)

// ReportArchive stores list validation reports as JSON objects keyed
// <prefix>/YYYY/MM/DD/<uuid>.json.
type ReportArchive struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewReportArchive creates an archive writing to bucket under prefix.
func NewReportArchive(client S3API, bucket, prefix string) *ReportArchive {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "list-reports"
	}
	return &ReportArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// SaveListReport uploads report and returns its object key.
func (a *ReportArchive) SaveListReport(ctx context.Context, report *domain.ListValidationReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling list report: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", a.prefix, a.now().UTC().Format("2006/01/02"), uuid.New().String())

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("putting list report to S3: %w", err)
	}
	return key, nil
}
