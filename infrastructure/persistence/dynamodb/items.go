package dynamodb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
)

type phoneItem struct {
	ID         string  `dynamodbav:"ID"`
	Label      *string `dynamodbav:"Label,omitempty"`
	Phone      string  `dynamodbav:"Phone"`
	Normalized string  `dynamodbav:"Normalized"`
}

type emailItem struct {
	ID    string  `dynamodbav:"ID"`
	Label *string `dynamodbav:"Label,omitempty"`
	Email string  `dynamodbav:"Email"`
}

// contactItem represents the DynamoDB item structure for a contact
type contactItem struct {
	PK          string      `dynamodbav:"PK"`
	SK          string      `dynamodbav:"SK"`
	EntityType  string      `dynamodbav:"EntityType"`
	ContactID   string      `dynamodbav:"ContactID"`
	DisplayName string      `dynamodbav:"DisplayName"`
	NameKey     string      `dynamodbav:"NameKey"`
	Note        *string     `dynamodbav:"Note,omitempty"`
	Phones      []phoneItem `dynamodbav:"Phones"`
	Emails      []emailItem `dynamodbav:"Emails"`
	CreatedAt   string      `dynamodbav:"CreatedAt"`
	UpdatedAt   string      `dynamodbav:"UpdatedAt"`
}

// relationshipItem represents the DynamoDB item structure for a relationship
type relationshipItem struct {
	PK             string  `dynamodbav:"PK"`
	SK             string  `dynamodbav:"SK"`
	EntityType     string  `dynamodbav:"EntityType"`
	RelationshipID string  `dynamodbav:"RelationshipID"`
	FromContactID  string  `dynamodbav:"FromContactID"`
	ToContactID    string  `dynamodbav:"ToContactID"`
	Type           string  `dynamodbav:"Type"`
	Directed       bool    `dynamodbav:"Directed"`
	Strength       *int    `dynamodbav:"Strength,omitempty"`
	Note           *string `dynamodbav:"Note,omitempty"`
	CreatedAt      string  `dynamodbav:"CreatedAt"`
	UpdatedAt      string  `dynamodbav:"UpdatedAt"`

	// GSI attributes for querying by endpoint
	GSI2PK string `dynamodbav:"GSI2PK"` // FROM#contactId
	GSI2SK string `dynamodbav:"GSI2SK"` // createdAt#relId
	GSI3PK string `dynamodbav:"GSI3PK"` // TO#contactId
	GSI3SK string `dynamodbav:"GSI3SK"` // createdAt#relId
}

func contactPK(id string) string      { return "CONTACT#" + id }
func relationshipPK(id string) string { return "REL#" + id }
func fromKey(id string) string        { return "FROM#" + id }
func toKey(id string) string          { return "TO#" + id }

func contactKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: contactPK(id)},
		"SK": &types.AttributeValueMemberS{Value: contactSK},
	}
}

func relationshipKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: relationshipPK(id)},
		"SK": &types.AttributeValueMemberS{Value: relationshipSK},
	}
}

func toContactItem(c *entities.Contact) contactItem {
	item := contactItem{
		PK:          contactPK(c.ID),
		SK:          contactSK,
		EntityType:  entityContact,
		ContactID:   c.ID,
		DisplayName: c.DisplayName,
		NameKey:     strings.ToLower(c.DisplayName),
		Note:        c.Note,
		Phones:      make([]phoneItem, 0, len(c.Phones)),
		Emails:      make([]emailItem, 0, len(c.Emails)),
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
	for _, p := range c.Phones {
		item.Phones = append(item.Phones, phoneItem{ID: p.ID, Label: p.Label, Phone: p.Phone, Normalized: p.Normalized})
	}
	for _, e := range c.Emails {
		item.Emails = append(item.Emails, emailItem{ID: e.ID, Label: e.Label, Email: e.Email})
	}
	return item
}

func (item contactItem) toEntity() (*entities.Contact, error) {
	created, err := parseTime(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("contact %s: bad CreatedAt: %w", item.ContactID, err)
	}
	updated, err := parseTime(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("contact %s: bad UpdatedAt: %w", item.ContactID, err)
	}

	c := &entities.Contact{
		ID:          item.ContactID,
		DisplayName: item.DisplayName,
		Note:        item.Note,
		Phones:      make([]entities.Phone, 0, len(item.Phones)),
		Emails:      make([]entities.Email, 0, len(item.Emails)),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	for _, p := range item.Phones {
		c.Phones = append(c.Phones, entities.Phone{ID: p.ID, Label: p.Label, Phone: p.Phone, Normalized: p.Normalized})
	}
	for _, e := range item.Emails {
		c.Emails = append(c.Emails, entities.Email{ID: e.ID, Label: e.Label, Email: e.Email})
	}
	c.SortDetails()
	return c, nil
}

func toRelationshipItem(r *entities.Relationship) relationshipItem {
	created := formatTime(r.CreatedAt)
	sortKey := created + "#" + r.ID
	return relationshipItem{
		PK:             relationshipPK(r.ID),
		SK:             relationshipSK,
		EntityType:     entityRelationship,
		RelationshipID: r.ID,
		FromContactID:  r.FromContactID,
		ToContactID:    r.ToContactID,
		Type:           r.Type,
		Directed:       r.Directed,
		Strength:       r.Strength,
		Note:           r.Note,
		CreatedAt:      created,
		UpdatedAt:      formatTime(r.UpdatedAt),
		GSI2PK:         fromKey(r.FromContactID),
		GSI2SK:         sortKey,
		GSI3PK:         toKey(r.ToContactID),
		GSI3SK:         sortKey,
	}
}

func (item relationshipItem) toEntity() (*entities.Relationship, error) {
	created, err := parseTime(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("relationship %s: bad CreatedAt: %w", item.RelationshipID, err)
	}
	updated, err := parseTime(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("relationship %s: bad UpdatedAt: %w", item.RelationshipID, err)
	}
	return &entities.Relationship{
		ID:            item.RelationshipID,
		FromContactID: item.FromContactID,
		ToContactID:   item.ToContactID,
		Type:          item.Type,
		Directed:      item.Directed,
		Strength:      item.Strength,
		Note:          item.Note,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

func unmarshalContacts(items []map[string]types.AttributeValue) ([]*entities.Contact, error) {
	var raw []contactItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
	}
	out := make([]*entities.Contact, 0, len(raw))
	for _, item := range raw {
		c, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func unmarshalRelationships(items []map[string]types.AttributeValue) ([]*entities.Relationship, error) {
	var raw []relationshipItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relationships: %w", err)
	}
	out := make([]*entities.Relationship, 0, len(raw))
	for _, item := range raw {
		r, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
