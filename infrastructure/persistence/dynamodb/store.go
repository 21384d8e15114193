// Package dynamodb stores contacts and relationships in a single DynamoDB
// table. Relationships are indexed by both endpoints through two GSIs so the
// incident set of a contact is two queries.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

const (
	entityContact      = "CONTACT"
	entityRelationship = "RELATIONSHIP"

	contactSK      = "PROFILE"
	relationshipSK = "REL"

	maxBatchWrite = 25
	maxRetries    = 3
)

// Timestamps are stored as fixed-width UTC text so GSI sort keys order by time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// API is the subset of the DynamoDB client used by the store
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// Config names the table and its indexes
type Config struct {
	TableName       string
	EdgeIndexName   string
	TargetIndexName string
}

// Store holds the client shared by both repositories
type Store struct {
	client API
	config Config
	logger *zap.Logger
}

// NewStore creates a new DynamoDB-backed store
func NewStore(client API, config Config, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		config: config,
		logger: logger,
	}
}

// Contacts returns the contact repository view of the store.
func (s *Store) Contacts() *ContactRepository {
	return &ContactRepository{store: s}
}

// Relationships returns the relationship repository view of the store.
func (s *Store) Relationships() *RelationshipRepository {
	return &RelationshipRepository{store: s}
}

// Ping checks that the table exists and is reachable
func (s *Store) Ping(ctx context.Context) error {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.TableName),
	})
	if err != nil {
		return dbError("describe table", err)
	}
	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive && out.Table.TableStatus != types.TableStatusUpdating {
		return pkgerrors.NewUnavailableError("dynamodb")
	}
	return nil
}

// batchDelete removes keys in chunks of 25, retrying unprocessed items with backoff.
func (s *Store) batchDelete(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(keys))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		pending := requests
		for retry := 0; len(pending) > 0; retry++ {
			if retry == maxRetries {
				return dbError("batch delete",
					fmt.Errorf("%d items still unprocessed after %d attempts", len(pending), maxRetries))
			}

			result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{s.config.TableName: pending},
			})
			if err != nil {
				s.logger.Warn("Batch delete failed, retrying", zap.Error(err), zap.Int("retry", retry+1))
			} else {
				pending = result.UnprocessedItems[s.config.TableName]
				if len(pending) == 0 {
					break
				}
			}

			backoff := time.Duration(retry*retry+1) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil
}

// dbError maps throttling to Unavailable and everything else to a database error.
func dbError(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return pkgerrors.NewUnavailableError("dynamodb").WithCause(err)
		}
	}
	return pkgerrors.NewDatabaseError(operation, err)
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
