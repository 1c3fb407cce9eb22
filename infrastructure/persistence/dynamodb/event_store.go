package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoDBEventStore implements the EventStore interface using DynamoDB.
// Events are written with the Outbox pattern: saved as pending, then
// published asynchronously by the OutboxProcessor.
type DynamoDBEventStore struct {
	client    *dynamodb.Client
	tableName string
}

// PublishStatus represents the publishing status of an event
type PublishStatus string

const (
	PublishStatusPending   PublishStatus = "pending"   // Saved but not yet published
	PublishStatusPublished PublishStatus = "published" // Successfully published
	PublishStatusFailed    PublishStatus = "failed"    // Publishing gave up after retries
)

// EventRecord represents how events are stored in DynamoDB
type EventRecord struct {
	PK            string                 `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK            string                 `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EventID       string                 `dynamodbav:"EventID"`
	EventType     string                 `dynamodbav:"EventType"`
	AggregateID   string                 `dynamodbav:"AggregateID"`
	AggregateType string                 `dynamodbav:"AggregateType"`
	EventData     map[string]interface{} `dynamodbav:"EventData"`
	Timestamp     string                 `dynamodbav:"Timestamp"`
	Version       int                    `dynamodbav:"Version"`

	// Outbox pattern fields
	PublishStatus   string `dynamodbav:"PublishStatus"`
	PublishAttempts int    `dynamodbav:"PublishAttempts"`
	LastPublishTry  string `dynamodbav:"LastPublishTry,omitempty"`
	PublishedAt     string `dynamodbav:"PublishedAt,omitempty"`
	ErrorMessage    string `dynamodbav:"ErrorMessage,omitempty"`

	// GSI attributes for querying by event type
	GSI2PK string `dynamodbav:"GSI2PK"` // EVENTTYPE#<type>
	GSI2SK string `dynamodbav:"GSI2SK"` // EVENT#<timestamp>

	// TTL for automatic cleanup
	TTL int64 `dynamodbav:"TTL,omitempty"`
}

// NewDynamoDBEventStore creates a new DynamoDB event store
func NewDynamoDBEventStore(client *dynamodb.Client, tableName string) *DynamoDBEventStore {
	return &DynamoDBEventStore{
		client:    client,
		tableName: tableName,
	}
}

// SaveEvents persists domain events to the event store
func (es *DynamoDBEventStore) SaveEvents(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(batch))

	for _, event := range batch {
		record, err := es.eventToRecord(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to record: %w", err)
		}

		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}

		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: item,
			},
		})
	}

	// DynamoDB limits batch writes to 25 items
	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				es.tableName: writeRequests[i:end],
			},
		}

		result, err := es.client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}

		if len(result.UnprocessedItems) > 0 {
			return fmt.Errorf("failed to write %d events", len(result.UnprocessedItems[es.tableName]))
		}
	}

	return nil
}

// GetEvents retrieves all events for an aggregate in timestamp order
func (es *DynamoDBEventStore) GetEvents(ctx context.Context, aggregateID string) ([]ports.StoredEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTS#%s", aggregateID)},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var stored []ports.StoredEvent

	// Handle pagination
	for {
		result, err := es.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		for _, item := range result.Items {
			var record EventRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
			}

			event, err := recordToStoredEvent(record)
			if err != nil {
				return nil, err
			}
			stored = append(stored, event)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return stored, nil
}

// GetEventsByType retrieves the most recent events of a specific type
func (es *DynamoDBEventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]ports.StoredEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTTYPE#%s", eventType)},
		},
		ScanIndexForward: aws.Bool(false),
	}

	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := es.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by type: %w", err)
	}

	stored := make([]ports.StoredEvent, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
		}

		event, err := recordToStoredEvent(record)
		if err != nil {
			return nil, err
		}
		stored = append(stored, event)
	}

	return stored, nil
}

// eventToRecord converts a domain event to a DynamoDB record
func (es *DynamoDBEventStore) eventToRecord(event events.DomainEvent) (*EventRecord, error) {
	eventData := make(map[string]interface{})

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := json.Unmarshal(eventBytes, &eventData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event to map: %w", err)
	}

	timestamp := event.GetTimestamp()
	eventID := uuid.New().String()

	// Events older than a year are cleaned up automatically
	ttl := timestamp.Add(365 * 24 * time.Hour).Unix()

	return &EventRecord{
		PK:            fmt.Sprintf("EVENTS#%s", event.GetAggregateID()),
		SK:            fmt.Sprintf("EVENT#%s#%s", timestamp.Format(time.RFC3339Nano), eventID),
		EventID:       eventID,
		EventType:     event.GetEventType(),
		AggregateID:   event.GetAggregateID(),
		AggregateType: aggregateTypeOf(event.GetEventType()),
		EventData:     eventData,
		Timestamp:     timestamp.Format(time.RFC3339),
		Version:       event.GetVersion(),

		PublishStatus:   string(PublishStatusPending),
		PublishAttempts: 0,

		GSI2PK: fmt.Sprintf("EVENTTYPE#%s", event.GetEventType()),
		GSI2SK: fmt.Sprintf("EVENT#%s", timestamp.Format(time.RFC3339Nano)),
		TTL:    ttl,
	}, nil
}

// aggregateTypeOf derives the aggregate type from an event type prefix
func aggregateTypeOf(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "account."):
		return "account"
	case strings.HasPrefix(eventType, "relationship."):
		return "relationship"
	case strings.HasPrefix(eventType, "member."):
		return "member"
	case strings.HasPrefix(eventType, "edges."):
		return "maintenance"
	default:
		return "unknown"
	}
}

// recordToStoredEvent converts a DynamoDB record to the port's stored form
func recordToStoredEvent(record EventRecord) (ports.StoredEvent, error) {
	timestamp, err := time.Parse(time.RFC3339, record.Timestamp)
	if err != nil {
		return ports.StoredEvent{}, fmt.Errorf("failed to parse event timestamp: %w", err)
	}

	payload, err := json.Marshal(record.EventData)
	if err != nil {
		return ports.StoredEvent{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return ports.StoredEvent{
		AggregateID: record.AggregateID,
		EventType:   record.EventType,
		Payload:     payload,
		Timestamp:   timestamp,
		Version:     record.Version,
	}, nil
}

// recordToEvent rebuilds a concrete domain event from a stored record so
// the outbox processor can republish it
func (es *DynamoDBEventStore) recordToEvent(record EventRecord) (events.DomainEvent, error) {
	timestamp, err := time.Parse(time.RFC3339, record.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	baseEvent := events.BaseEvent{
		AggregateID: record.AggregateID,
		EventType:   record.EventType,
		Timestamp:   timestamp,
		Version:     record.Version,
	}

	data := record.EventData

	switch record.EventType {
	case "account.registered":
		accountID, _ := personIDField(data, "account_id")
		email, _ := data["email"].(string)
		displayName, _ := data["display_name"].(string)
		dateOfBirth, _ := data["date_of_birth"].(string)
		return &events.AccountRegistered{
			BaseEvent:   baseEvent,
			AccountID:   accountID,
			Email:       email,
			DisplayName: displayName,
			DateOfBirth: dateOfBirth,
		}, nil

	case "relationship.created":
		relID, _ := relationshipIDField(data, "relationship_id")
		initiatorID, _ := personIDField(data, "initiator_id")
		targetID, _ := personIDField(data, "target_id")
		relType, _ := data["type"].(string)
		return &events.RelationshipCreated{
			BaseEvent:      baseEvent,
			RelationshipID: relID,
			InitiatorID:    initiatorID,
			TargetID:       targetID,
			Type:           valueobjects.RelationshipType(relType),
		}, nil

	case "relationship.deleted":
		relID, _ := relationshipIDField(data, "relationship_id")
		initiatorID, _ := personIDField(data, "initiator_id")
		targetID, _ := personIDField(data, "target_id")
		relType, _ := data["type"].(string)
		reciprocalGone, _ := data["reciprocal_gone"].(bool)
		return &events.RelationshipDeleted{
			BaseEvent:      baseEvent,
			RelationshipID: relID,
			InitiatorID:    initiatorID,
			TargetID:       targetID,
			Type:           valueobjects.RelationshipType(relType),
			ReciprocalGone: reciprocalGone,
		}, nil

	case "member.added":
		memberID, _ := personIDField(data, "member_id")
		addedBy, _ := personIDField(data, "added_by")
		displayName, _ := data["display_name"].(string)
		relation, _ := data["relation_to_adder"].(string)
		return &events.MemberAdded{
			BaseEvent:       baseEvent,
			MemberID:        memberID,
			AddedBy:         addedBy,
			DisplayName:     displayName,
			RelationToAdder: valueobjects.RelationshipType(relation),
		}, nil

	case "member.linked":
		memberID, _ := personIDField(data, "member_id")
		linkedAccountID, _ := personIDField(data, "linked_account_id")
		linkedBy, _ := personIDField(data, "linked_by")
		return &events.MemberLinked{
			BaseEvent:       baseEvent,
			MemberID:        memberID,
			LinkedAccountID: linkedAccountID,
			LinkedBy:        linkedBy,
		}, nil

	case "member.unlinked":
		memberID, _ := personIDField(data, "member_id")
		return &events.MemberUnlinked{
			BaseEvent: baseEvent,
			MemberID:  memberID,
		}, nil

	case "edges.reconciled":
		accountID, _ := personIDField(data, "account_id")
		scanned, _ := data["scanned"].(float64)
		removed, _ := data["removed"].(float64)
		return &events.EdgesReconciled{
			BaseEvent: baseEvent,
			AccountID: accountID,
			Scanned:   int(scanned),
			Removed:   int(removed),
		}, nil

	default:
		return &baseEvent, nil
	}
}

func personIDField(data map[string]interface{}, key string) (valueobjects.PersonID, error) {
	s, _ := data[key].(string)
	return valueobjects.NewPersonIDFromString(s)
}

func relationshipIDField(data map[string]interface{}, key string) (valueobjects.RelationshipID, error) {
	s, _ := data[key].(string)
	return valueobjects.NewRelationshipIDFromString(s)
}

// Outbox pattern methods

// GetPendingEvents retrieves events that haven't been published yet
func (es *DynamoDBEventStore) GetPendingEvents(ctx context.Context, limit int32) ([]*EventRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(es.tableName),
		FilterExpression: aws.String("PublishStatus = :status AND begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(PublishStatusPending)},
			":prefix": &types.AttributeValueMemberS{Value: "EVENTS#"},
		},
		Limit: aws.Int32(limit),
	}

	result, err := es.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending events: %w", err)
	}

	records := make([]*EventRecord, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			continue // Skip malformed records
		}
		records = append(records, &record)
	}

	return records, nil
}

// MarkEventAsPublished marks an event as successfully published
func (es *DynamoDBEventStore) MarkEventAsPublished(ctx context.Context, eventPK, eventSK string) error {
	now := time.Now().Format(time.RFC3339)

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :published, PublishedAt = :publishedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":published":   &types.AttributeValueMemberS{Value: string(PublishStatusPublished)},
			":publishedAt": &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}

	return nil
}

// MarkEventAsFailed records a failed publish attempt. Events stay pending
// until the attempt limit is reached, then flip to failed.
func (es *DynamoDBEventStore) MarkEventAsFailed(ctx context.Context, eventPK, eventSK string, errorMsg string, attempts int) error {
	now := time.Now().Format(time.RFC3339)

	status := string(PublishStatusFailed)
	if attempts < 3 {
		status = string(PublishStatusPending)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :status, PublishAttempts = :attempts, LastPublishTry = :lastTry, ErrorMessage = :error"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: status},
			":attempts": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", attempts)},
			":lastTry":  &types.AttributeValueMemberS{Value: now},
			":error":    &types.AttributeValueMemberS{Value: errorMsg},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}

	return nil
}
