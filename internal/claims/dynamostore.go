package claims

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/claimdesk/claimdesk/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore persists claim snapshots to a DynamoDB table keyed by claim
// id. Whole snapshots are written on every mutation; there are no
// field-level updates, so remote state always mirrors an entity the
// repository produced.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("claims: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("claims: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{client: client, tableName: tableName, logger: logger}
}

// PutClaim writes the claim snapshot, replacing any prior item.
func (s *DynamoStore) PutClaim(ctx context.Context, c Claim) error {
	item, err := attributevalue.MarshalMap(toRecord(c))
	if err != nil {
		return fmt.Errorf("claims: failed to marshal claim %s: %w", c.ID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("claims: failed to persist claim %s: %w", c.ID, err)
	}
	return nil
}

// DeleteClaim removes the claim item.
func (s *DynamoStore) DeleteClaim(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("claims: failed to delete claim %s: %w", id, err)
	}
	return nil
}

// LoadAll scans the full table. The collection is small enough for a scan;
// pagination is still honored.
func (s *DynamoStore) LoadAll(ctx context.Context) ([]Claim, error) {
	var (
		out      []Claim
		startKey map[string]types.AttributeValue
	)
	for {
		resp, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("claims: failed to scan claims table: %w", err)
		}
		for _, item := range resp.Items {
			var rec claimRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("claims: failed to decode claim item: %w", err)
			}
			c, err := fromRecord(rec)
			if err != nil {
				s.logger.Warn("skipping undecodable claim record", "claim_id", rec.ID, "error", err)
				continue
			}
			out = append(out, c)
		}
		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	if out == nil {
		out = []Claim{}
	}
	return out, nil
}
