package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DistributedRateLimiter throttles API traffic with DynamoDB as the
// shared counter store, so limits hold across Lambda invocations. The
// counters live in the same single table as the family data.
type DistributedRateLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
	scope     string
}

type throttleItem struct {
	PK        string    `dynamodbav:"PK"`
	Count     int       `dynamodbav:"Count"`
	WindowEnd time.Time `dynamodbav:"WindowEnd"`
	TTL       int64     `dynamodbav:"TTL"`
}

// NewDistributedRateLimiter creates a limiter for one scope, such as
// "API" for the whole surface or "TREE" for tree builds
func NewDistributedRateLimiter(client *dynamodb.Client, tableName string, limit int, window time.Duration, scope string) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
		scope:     scope,
	}
}

func (r *DistributedRateLimiter) itemKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("THROTTLE#%s#%s#%d", r.scope, key, windowStart.Unix())
}

// Allow atomically counts the request against the current window. With
// no DynamoDB client configured, as in local development, every request
// passes. Store errors fail open with the error returned for logging.
func (r *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return true, nil
	}

	now := time.Now()
	windowStart := now.Truncate(r.window)
	windowEnd := windowStart.Add(r.window)

	// Conditional increment: the counter only moves while under the limit
	update := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: r.itemKey(key, windowStart)},
		},
		UpdateExpression:    aws.String("SET #count = if_not_exists(#count, :zero) + :incr, WindowEnd = :window_end, #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_not_exists(#count) OR #count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#count": "Count",
			"#ttl":   "TTL",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":       &types.AttributeValueMemberN{Value: "0"},
			":incr":       &types.AttributeValueMemberN{Value: "1"},
			":limit":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", r.limit)},
			":window_end": &types.AttributeValueMemberS{Value: windowEnd.Format(time.RFC3339)},
			":ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", windowEnd.Add(time.Hour).Unix())},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, update)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}

	var item throttleItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return true, fmt.Errorf("failed to parse throttle counter (failing open): %w", err)
	}

	return item.Count <= r.limit, nil
}

// Remaining reports how many requests are left in the current window
// and how long until it resets
func (r *DistributedRateLimiter) Remaining(ctx context.Context, key string) (int, time.Duration, error) {
	now := time.Now()
	windowStart := now.Truncate(r.window)
	windowEnd := windowStart.Add(r.window)

	if r.client == nil {
		return r.limit, r.window, nil
	}

	get := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: r.itemKey(key, windowStart)},
		},
	}

	result, err := r.client.GetItem(ctx, get)
	if err != nil || result.Item == nil {
		return r.limit, time.Until(windowEnd), nil
	}

	var item throttleItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return r.limit, time.Until(windowEnd), fmt.Errorf("failed to parse throttle counter: %w", err)
	}

	remaining := r.limit - item.Count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, time.Until(item.WindowEnd), nil
}

// Reset clears the current window for a key
func (r *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}

	windowStart := time.Now().Truncate(r.window)
	del := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: r.itemKey(key, windowStart)},
		},
	}

	_, err := r.client.DeleteItem(ctx, del)
	return err
}

// Limit returns the configured request limit per window
func (r *DistributedRateLimiter) Limit() int {
	return r.limit
}

// Window returns the configured window size
func (r *DistributedRateLimiter) Window() time.Duration {
	return r.window
}
