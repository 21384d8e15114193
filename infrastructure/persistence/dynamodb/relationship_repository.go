package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// RelationshipRepository implements ports.RelationshipRepository on DynamoDB
type RelationshipRepository struct {
	store *Store
}

// Create writes the relationship in a transaction that also checks both
// endpoint contacts exist.
func (r *RelationshipRepository) Create(ctx context.Context, rel *entities.Relationship) error {
	av, err := attributevalue.MarshalMap(toRelationshipItem(rel))
	if err != nil {
		return fmt.Errorf("failed to marshal relationship: %w", err)
	}

	exists, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeExists()).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}
	absent, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeNotExists()).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	table := aws.String(r.store.config.TableName)
	_, err = r.store.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{ConditionCheck: &types.ConditionCheck{
				TableName:                table,
				Key:                      contactKey(rel.FromContactID),
				ConditionExpression:      exists.Condition(),
				ExpressionAttributeNames: exists.Names(),
			}},
			{ConditionCheck: &types.ConditionCheck{
				TableName:                table,
				Key:                      contactKey(rel.ToContactID),
				ConditionExpression:      exists.Condition(),
				ExpressionAttributeNames: exists.Names(),
			}},
			{Put: &types.Put{
				TableName:                table,
				Item:                     av,
				ConditionExpression:      absent.Condition(),
				ExpressionAttributeNames: absent.Names(),
			}},
		},
	})
	if err != nil {
		return translateTransactError(err)
	}

	r.store.logger.Debug("Relationship saved",
		zap.String("relationshipID", rel.ID),
		zap.String("from", rel.FromContactID),
		zap.String("to", rel.ToContactID),
	)
	return nil
}

// translateTransactError maps cancellation reasons of the create transaction:
// the first two items check the endpoints, the third is the put.
func translateTransactError(err error) error {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for i, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
				continue
			}
			if i < 2 {
				return pkgerrors.NewNotFoundError("contact")
			}
			return pkgerrors.NewConflictError("relationship already exists")
		}
	}
	return dbError("create relationship", err)
}

func (r *RelationshipRepository) GetByID(ctx context.Context, id string) (*entities.Relationship, error) {
	result, err := r.store.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.store.config.TableName),
		Key:            relationshipKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, dbError("get relationship", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}

	var item relationshipItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relationship: %w", err)
	}
	return item.toEntity()
}

func (r *RelationshipRepository) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeExists()).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.store.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.store.config.TableName),
		Key:                       relationshipKey(id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewNotFoundError("relationship")
		}
		return dbError("delete relationship", err)
	}
	return nil
}

func (r *RelationshipRepository) ListByContact(ctx context.Context, contactID string) ([]*entities.Relationship, error) {
	rels, err := r.incident(ctx, contactID, nil)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(rels)
	return rels, nil
}

func (r *RelationshipRepository) ListIncident(ctx context.Context, contactID string, allowed services.TypeSet) ([]*entities.Relationship, error) {
	return r.incident(ctx, contactID, allowed)
}

func (r *RelationshipRepository) DeleteByContact(ctx context.Context, contactID string) (int, error) {
	rels, err := r.incident(ctx, contactID, nil)
	if err != nil {
		return 0, err
	}
	if len(rels) == 0 {
		return 0, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(rels))
	for _, rel := range rels {
		keys = append(keys, relationshipKey(rel.ID))
	}
	if err := r.store.batchDelete(ctx, keys); err != nil {
		return 0, err
	}

	r.store.logger.Debug("Deleted contact relationships",
		zap.String("contactID", contactID),
		zap.Int("count", len(rels)),
	)
	return len(rels), nil
}

func (r *RelationshipRepository) List(ctx context.Context) ([]*entities.Relationship, error) {
	items, err := r.store.scanEntities(ctx, entityRelationship)
	if err != nil {
		return nil, err
	}
	rels, err := unmarshalRelationships(items)
	if err != nil {
		return nil, err
	}
	sortByCreation(rels)
	return rels, nil
}

// incident queries both endpoint indexes and merges the results in creation order.
func (r *RelationshipRepository) incident(ctx context.Context, contactID string, allowed services.TypeSet) ([]*entities.Relationship, error) {
	outgoing, err := r.queryIndex(ctx, r.store.config.EdgeIndexName, "GSI2PK", fromKey(contactID), allowed)
	if err != nil {
		return nil, err
	}
	incoming, err := r.queryIndex(ctx, r.store.config.TargetIndexName, "GSI3PK", toKey(contactID), allowed)
	if err != nil {
		return nil, err
	}
	return mergeIncident(outgoing, incoming), nil
}

func (r *RelationshipRepository) queryIndex(ctx context.Context, index, keyName, keyValue string, allowed services.TypeSet) ([]*entities.Relationship, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyName).Equal(expression.Value(keyValue)))
	if filter, ok := typeFilter(allowed); ok {
		builder = builder.WithFilter(filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.store.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.config.TableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, dbError("query "+index, err)
		}
		items = append(items, page.Items...)
	}
	return unmarshalRelationships(items)
}

// typeFilter builds `Type IN (...)`; ok is false for an empty set.
func typeFilter(allowed services.TypeSet) (expression.ConditionBuilder, bool) {
	values := allowed.Values()
	if len(values) == 0 {
		return expression.ConditionBuilder{}, false
	}
	name := expression.Name("Type")
	if len(values) == 1 {
		return name.Equal(expression.Value(values[0])), true
	}
	operands := make([]expression.OperandBuilder, 0, len(values)-1)
	for _, v := range values[1:] {
		operands = append(operands, expression.Value(v))
	}
	return name.In(expression.Value(values[0]), operands...), true
}

// mergeIncident deduplicates by id and orders by creation time, then id.
func mergeIncident(lists ...[]*entities.Relationship) []*entities.Relationship {
	seen := make(map[string]bool)
	merged := []*entities.Relationship{}
	for _, list := range lists {
		for _, rel := range list {
			if seen[rel.ID] {
				continue
			}
			seen[rel.ID] = true
			merged = append(merged, rel)
		}
	}
	sortByCreation(merged)
	return merged
}

func sortByCreation(rels []*entities.Relationship) {
	sort.SliceStable(rels, func(i, j int) bool {
		if !rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].CreatedAt.Before(rels[j].CreatedAt)
		}
		return rels[i].ID < rels[j].ID
	})
}

func sortNewestFirst(rels []*entities.Relationship) {
	sort.SliceStable(rels, func(i, j int) bool {
		if !rels[i].UpdatedAt.Equal(rels[j].UpdatedAt) {
			return rels[i].UpdatedAt.After(rels[j].UpdatedAt)
		}
		return rels[i].ID > rels[j].ID
	})
}
