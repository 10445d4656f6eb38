// Package store persists caller addresses in DynamoDB.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Sealer encrypts values before they are written.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(ciphertext string) (string, error)
}

type addressItem struct {
	PK        string `dynamodbav:"PK"`
	Address   string `dynamodbav:"Address"`
	Encrypted bool   `dynamodbav:"Encrypted"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

func UserPK(userID string) string {
	return "USER#" + userID
}

type AddressStore struct {
	ddb    DDBClient
	table  string
	sealer Sealer
	now    func() time.Time
}

// NewAddressStore returns a store over table. sealer may be nil, in which
// case addresses are stored in plain text.
func NewAddressStore(ddb DDBClient, table string, sealer Sealer) *AddressStore {
	return &AddressStore{ddb: ddb, table: table, sealer: sealer, now: time.Now}
}

// LoadAddress returns "" when the caller has no stored address.
func (s *AddressStore) LoadAddress(ctx context.Context, userID string) (string, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: UserPK(userID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("address GetItem: %w", err)
	}
	if len(out.Item) == 0 {
		return "", nil
	}

	var item addressItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", fmt.Errorf("unmarshal address item: %w", err)
	}
	if !item.Encrypted {
		return item.Address, nil
	}
	if s.sealer == nil {
		return "", fmt.Errorf("address for %s is encrypted but no key is configured", UserPK(userID))
	}
	addr, err := s.sealer.Open(item.Address)
	if err != nil {
		return "", fmt.Errorf("decrypt address: %w", err)
	}
	return addr, nil
}

func (s *AddressStore) SaveAddress(ctx context.Context, userID, address string) error {
	address = strings.TrimSpace(address)
	item := addressItem{
		PK:        UserPK(userID),
		Address:   address,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(address)
		if err != nil {
			return fmt.Errorf("encrypt address: %w", err)
		}
		item.Address = sealed
		item.Encrypted = true
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal address item: %w", err)
	}
	if _, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("address PutItem: %w", err)
	}
	return nil
}
