package dynamodb

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// ContactRepository implements ports.ContactRepository on DynamoDB
type ContactRepository struct {
	store *Store
}

func (r *ContactRepository) Create(ctx context.Context, contact *entities.Contact) error {
	return r.put(ctx, contact, expression.Name("PK").AttributeNotExists(), func() error {
		return pkgerrors.NewConflictError("contact already exists")
	})
}

func (r *ContactRepository) Update(ctx context.Context, contact *entities.Contact) error {
	return r.put(ctx, contact, expression.Name("PK").AttributeExists(), func() error {
		return pkgerrors.NewNotFoundError("contact")
	})
}

func (r *ContactRepository) put(ctx context.Context, contact *entities.Contact, cond expression.ConditionBuilder, onConflict func() error) error {
	av, err := attributevalue.MarshalMap(toContactItem(contact))
	if err != nil {
		return fmt.Errorf("failed to marshal contact: %w", err)
	}

	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.store.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.store.config.TableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return onConflict()
		}
		return dbError("put contact", err)
	}

	r.store.logger.Debug("Contact saved", zap.String("contactID", contact.ID))
	return nil
}

// Delete removes the contact item and every relationship touching it.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeExists()).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.store.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.store.config.TableName),
		Key:                       contactKey(id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewNotFoundError("contact")
		}
		return dbError("delete contact", err)
	}

	if _, err := r.store.Relationships().DeleteByContact(ctx, id); err != nil {
		return err
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*entities.Contact, error) {
	result, err := r.store.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.store.config.TableName),
		Key:            contactKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, dbError("get contact", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("contact")
	}

	var item contactItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact: %w", err)
	}
	return item.toEntity()
}

func (r *ContactRepository) FindRef(ctx context.Context, id string) (entities.ContactRef, bool, error) {
	proj := expression.NamesList(expression.Name("ContactID"), expression.Name("DisplayName"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return entities.ContactRef{}, false, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.store.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.store.config.TableName),
		Key:                      contactKey(id),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return entities.ContactRef{}, false, dbError("find contact", err)
	}
	if result.Item == nil {
		return entities.ContactRef{}, false, nil
	}

	var ref struct {
		ContactID   string `dynamodbav:"ContactID"`
		DisplayName string `dynamodbav:"DisplayName"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &ref); err != nil {
		return entities.ContactRef{}, false, fmt.Errorf("failed to unmarshal contact: %w", err)
	}
	return entities.ContactRef{ID: ref.ContactID, DisplayName: ref.DisplayName}, true, nil
}

// Search scans the contact items and filters them in process; the table has
// no secondary text index.
func (r *ContactRepository) Search(ctx context.Context, query string) ([]*entities.Contact, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	result := []*entities.Contact{}
	for _, c := range all {
		if c.Matches(query) {
			result = append(result, c.Basic())
		}
	}
	return result, nil
}

func (r *ContactRepository) List(ctx context.Context) ([]*entities.Contact, error) {
	items, err := r.store.scanEntities(ctx, entityContact)
	if err != nil {
		return nil, err
	}
	contacts, err := unmarshalContacts(items)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(contacts, entities.CompareNames)
	return contacts, nil
}

func (s *Store) scanEntities(ctx context.Context, entityType string) ([]map[string]types.AttributeValue, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityType))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.config.TableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, dbError("scan "+entityType, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
