package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/config"
)

const tableName = "tide-results-cache"

// DynamoDBClient is the subset of the DynamoDB API the cache uses.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoTideCache persists tide records so a fresh process can reuse results
// fetched before a restart, within the same short TTL as the memory layer.
type DynamoTideCache struct {
	client DynamoDBClient
	config *config.CacheConfig
}

func NewDynamoTideCache(client DynamoDBClient, cacheConfig *config.CacheConfig) *DynamoTideCache {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &DynamoTideCache{
		client: client,
		config: cacheConfig,
	}
}

// GetRecord retrieves the cached record for a location/day key, or nil when
// absent or expired.
func (c *DynamoTideCache) GetRecord(ctx context.Context, key string) (*TideRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"locationKey": &types.AttributeValueMemberS{Value: key},
		},
	}

	result, err := c.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("getting tide record from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var record TideRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling tide record: %w", err)
	}

	if !c.isValid(record) {
		log.Debug().Str("key", key).Msg("Persistent cache entry expired")
		return nil, nil
	}

	return &record, nil
}

// SaveRecord writes a record with the configured TTL.
func (c *DynamoTideCache) SaveRecord(ctx context.Context, record TideRecord) error {
	now := time.Now().Unix()
	record.FetchedAt = now
	record.TTL = now + int64(c.config.GetDynamoTTL().Seconds())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshaling tide record: %w", err)
	}

	// The table uses locationKey as its partition key; the record's Day is
	// already folded into it.
	item["locationKey"] = &types.AttributeValueMemberS{
		Value: fmt.Sprintf("%s:%s", record.LocationKey, record.Day),
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	}

	if _, err := c.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("putting tide record in DynamoDB: %w", err)
	}

	log.Debug().
		Str("locationKey", record.LocationKey).
		Str("day", record.Day).
		Msg("Saved tide record to persistent cache")

	return nil
}

func (c *DynamoTideCache) isValid(record TideRecord) bool {
	return time.Now().Unix() < record.TTL
}
