package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// fakeAPI embeds the interface so tests only implement the calls they use.
type fakeAPI struct {
	API
	getItem   func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem   func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	transact  func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
	describe  func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
	putInputs []*dynamodb.PutItemInput
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getItem(in)
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, in)
	return f.putItem(in)
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	return f.transact(in)
}

func (f *fakeAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return f.describe(in)
}

func newTestStore(api API) *Store {
	return NewStore(api, Config{
		TableName:       "contacts",
		EdgeIndexName:   "EdgeIndex",
		TargetIndexName: "TargetIndex",
	}, zap.NewNop())
}

func TestContactItemRoundTrip(t *testing.T) {
	note := "met at the conference"
	work := "work"
	contact, err := entities.NewContact("c1", "Grace Hopper", &note,
		[]entities.PhoneInput{{Phone: "555 0100", Label: &work}},
		[]entities.EmailInput{{Email: "grace@example.com"}},
		base)
	require.NoError(t, err)

	item := toContactItem(contact)
	assert.Equal(t, "CONTACT#c1", item.PK)
	assert.Equal(t, "grace hopper", item.NameKey)

	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)
	var decoded contactItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &decoded))

	got, err := decoded.toEntity()
	require.NoError(t, err)
	assert.Equal(t, contact.DisplayName, got.DisplayName)
	assert.Equal(t, note, *got.Note)
	assert.True(t, got.CreatedAt.Equal(base))
	require.Len(t, got.Phones, 1)
	assert.Equal(t, "5550100", got.Phones[0].Normalized)
	assert.Equal(t, "work", *got.Phones[0].Label)
	require.Len(t, got.Emails, 1)
}

func TestRelationshipItemIndexes(t *testing.T) {
	three := 3
	rel, err := entities.NewRelationship("r1", "a", "b", "friend", true, &three, nil, base)
	require.NoError(t, err)

	item := toRelationshipItem(rel)

	assert.Equal(t, "REL#r1", item.PK)
	assert.Equal(t, "FROM#a", item.GSI2PK)
	assert.Equal(t, "TO#b", item.GSI3PK)
	assert.Equal(t, "2024-05-01T09:00:00.000000000Z#r1", item.GSI2SK)
	assert.Equal(t, item.GSI2SK, item.GSI3SK)

	got, err := item.toEntity()
	require.NoError(t, err)
	assert.Equal(t, 3, *got.Strength)
	assert.True(t, got.Directed)
}

func TestTypeFilter(t *testing.T) {
	_, ok := typeFilter(nil)
	assert.False(t, ok)

	cond, ok := typeFilter(services.NewTypeSet("friend", "family"))
	require.True(t, ok)
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	require.NoError(t, err)

	assert.Contains(t, *expr.Filter(), "IN")
	assert.Len(t, expr.Values(), 2)
	assert.Contains(t, expr.Names(), "#0")
	assert.Equal(t, "Type", expr.Names()["#0"])
}

func TestMergeIncident(t *testing.T) {
	mk := func(id string, offset time.Duration) *entities.Relationship {
		return &entities.Relationship{ID: id, CreatedAt: base.Add(offset)}
	}
	outgoing := []*entities.Relationship{mk("r3", 3*time.Minute), mk("r1", time.Minute)}
	incoming := []*entities.Relationship{mk("r2", 2*time.Minute), mk("r1", time.Minute)}

	merged := mergeIncident(outgoing, incoming)

	ids := []string{}
	for _, r := range merged {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids)
}

func TestContactRepository_ConditionalFailures(t *testing.T) {
	api := &fakeAPI{
		putItem: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
		},
	}
	repo := newTestStore(api).Contacts()
	contact, err := entities.NewContact("c1", "Ada", nil, nil, nil, base)
	require.NoError(t, err)

	assert.True(t, pkgerrors.IsConflict(repo.Create(context.Background(), contact)))
	assert.True(t, pkgerrors.IsNotFound(repo.Update(context.Background(), contact)))

	require.Len(t, api.putInputs, 2)
	assert.Contains(t, *api.putInputs[0].ConditionExpression, "attribute_not_exists")
	assert.Contains(t, *api.putInputs[1].ConditionExpression, "attribute_exists")
}

func TestContactRepository_GetAndFindRef(t *testing.T) {
	contact, err := entities.NewContact("c1", "Ada", nil, nil, nil, base)
	require.NoError(t, err)
	av, err := attributevalue.MarshalMap(toContactItem(contact))
	require.NoError(t, err)

	api := &fakeAPI{
		getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			pk := in.Key["PK"].(*types.AttributeValueMemberS).Value
			if pk == "CONTACT#c1" {
				return &dynamodb.GetItemOutput{Item: av}, nil
			}
			return &dynamodb.GetItemOutput{}, nil
		},
	}
	repo := newTestStore(api).Contacts()
	ctx := context.Background()

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.DisplayName)

	_, err = repo.GetByID(ctx, "nope")
	assert.True(t, pkgerrors.IsNotFound(err))

	ref, found, err := repo.FindRef(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entities.ContactRef{ID: "c1", DisplayName: "Ada"}, ref)

	_, found, err = repo.FindRef(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRelationshipRepository_CreateTranslatesCancellation(t *testing.T) {
	reasons := func(codes ...string) []types.CancellationReason {
		out := make([]types.CancellationReason, len(codes))
		for i, c := range codes {
			out[i] = types.CancellationReason{Code: aws.String(c)}
		}
		return out
	}

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"missing endpoint", &types.TransactionCanceledException{CancellationReasons: reasons("None", "ConditionalCheckFailed", "None")}, pkgerrors.IsNotFound},
		{"duplicate id", &types.TransactionCanceledException{CancellationReasons: reasons("None", "None", "ConditionalCheckFailed")}, pkgerrors.IsConflict},
		{"transport", errors.New("timeout"), func(err error) bool { return pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *dynamodb.TransactWriteItemsInput
			api := &fakeAPI{
				transact: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
					captured = in
					return nil, tt.err
				},
			}
			rel, err := entities.NewRelationship("r1", "a", "b", "friend", false, nil, nil, base)
			require.NoError(t, err)

			err = newTestStore(api).Relationships().Create(context.Background(), rel)

			assert.True(t, tt.check(err), "unexpected error %v", err)
			require.NotNil(t, captured)
			assert.Len(t, captured.TransactItems, 3)
		})
	}
}

func TestStorePing(t *testing.T) {
	api := &fakeAPI{
		describe: func(in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			assert.Equal(t, "contacts", aws.ToString(in.TableName))
			return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil
		},
	}
	assert.NoError(t, newTestStore(api).Ping(context.Background()))

	api.describe = func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
		return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusCreating}}, nil
	}
	assert.True(t, pkgerrors.IsUnavailable(newTestStore(api).Ping(context.Background())))
}

func TestDBError_Throttling(t *testing.T) {
	throttled := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	assert.True(t, pkgerrors.IsUnavailable(dbError("get contact", throttled)))

	var typed error = &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
	assert.True(t, pkgerrors.IsUnavailable(dbError("get contact", typed)))

	assert.True(t, pkgerrors.IsType(dbError("get contact", errors.New("boom")), pkgerrors.ErrorTypeDatabase))
}
