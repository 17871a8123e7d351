package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/pkg/logger"
)

const (
	snapshotTTL          = 365 * 24 * time.Hour
	defaultSnapshotLimit = 30
	maxSnapshotLimit     = 500

	// Fixed-width nanoseconds keep sort keys in time order as strings.
	snapshotSKLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// HealthSnapshot is one recorded health computation.
type HealthSnapshot struct {
	RecordedAt time.Time            `json:"recorded_at"`
	Metrics    domain.HealthMetrics `json:"metrics"`
}

// SnapshotStore keeps a history of health metrics per window in DynamoDB.
// Items use PK "window#<w>" and SK "<timestamp>#<uuid>", so a query returns
// them in time order and saves within the same instant never collide.
type SnapshotStore struct {
	db    DynamoDBAPI
	table string
	now   func() time.Time
}

// NewSnapshotStore creates a store over table.
func NewSnapshotStore(db DynamoDBAPI, table string) *SnapshotStore {
	return &SnapshotStore{db: db, table: table, now: time.Now}
}

func snapshotPK(w domain.Window) string {
	return "window#" + string(w)
}

func snapshotSK(at time.Time) string {
	return at.Format(snapshotSKLayout) + "#" + uuid.New().String()
}

func parseSnapshotSK(sk string) (time.Time, error) {
	ts, _, _ := strings.Cut(sk, "#")
	return time.Parse(time.RFC3339, ts)
}

// SaveHealthSnapshot records m under its window.
func (s *SnapshotStore) SaveHealthSnapshot(ctx context.Context, m *domain.HealthMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling health metrics: %w", err)
	}

	now := s.now().UTC()
	item := DynamoDBItem{
		PK:        snapshotPK(m.Window),
		SK:        snapshotSK(now),
		Data:      string(data),
		Timestamp: now.Format(time.RFC3339Nano),
		TTL:       now.Add(snapshotTTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting health snapshot to DynamoDB: %w", err)
	}
	return nil
}

// ListHealthSnapshots returns up to limit snapshots for w, newest first.
func (s *SnapshotStore) ListHealthSnapshots(ctx context.Context, w domain.Window, limit int) ([]HealthSnapshot, error) {
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}

	result, err := s.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: snapshotPK(w)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("querying health snapshots from DynamoDB: %w", err)
	}

	snapshots := make([]HealthSnapshot, 0, len(result.Items))
	for _, raw := range result.Items {
		var item DynamoDBItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			logger.Warn("skipping unreadable health snapshot", "error", err)
			continue
		}
		recordedAt, err := parseSnapshotSK(item.SK)
		if err != nil {
			logger.Warn("skipping health snapshot with bad sort key", "sk", item.SK)
			continue
		}
		var m domain.HealthMetrics
		if err := json.Unmarshal([]byte(item.Data), &m); err != nil {
			logger.Warn("skipping health snapshot with bad payload", "sk", item.SK, "error", err)
			continue
		}
		snapshots = append(snapshots, HealthSnapshot{RecordedAt: recordedAt, Metrics: m})
	}
	return snapshots, nil
}
