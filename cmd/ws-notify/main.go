// Package main implements the WebSocket notification Lambda. It consumes
// relationship and member events from EventBridge and pushes tree change
// notices to every open connection of the affected accounts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var dynamoClient *dynamodb.Client

// NotifyMessage describes who should receive a tree change notice
type NotifyMessage struct {
	EventType      string                 `json:"event_type"`
	TargetAccounts []string               `json:"target_accounts,omitempty"`
	Payload        map[string]interface{} `json:"payload"`
}

// TreeNotice is the message format pushed to clients
type TreeNotice struct {
	Type      string                 `json:"type"`
	Event     string                 `json:"event"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// connection pairs a connection ID with the API Gateway endpoint it lives on
type connection struct {
	ID       string
	Endpoint string
}

func init() {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoClient = dynamodb.NewFromConfig(cfg)

	log.Println("WebSocket notify handler initialized")
}

func connectionsTable() string {
	if name := os.Getenv("CONNECTIONS_TABLE"); name != "" {
		return name
	}
	return "familytree-connections"
}

// newManagementClient creates an API Gateway Management API client bound
// to the endpoint a connection was established against
func newManagementClient(endpoint string) *apigatewaymanagementapi.Client {
	cfg, _ := config.LoadDefaultConfig(context.Background())

	return apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
	})
}

// connectionsForAccount retrieves all active connections for an account
func connectionsForAccount(ctx context.Context, accountID string) ([]connection, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(connectionsTable()),
		IndexName:              aws.String("account-index"),
		KeyConditionExpression: aws.String("GSI1PK = :accountpk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":accountpk": &types.AttributeValueMemberS{Value: fmt.Sprintf("ACCOUNT#%s", accountID)},
		},
	}

	result, err := dynamoClient.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	var connections []connection
	for _, item := range result.Items {
		connID, _ := item["ConnectionID"].(*types.AttributeValueMemberS)
		endpoint, _ := item["Endpoint"].(*types.AttributeValueMemberS)
		if connID != nil && endpoint != nil {
			connections = append(connections, connection{ID: connID.Value, Endpoint: endpoint.Value})
		}
	}

	return connections, nil
}

// pushToConnection sends a notice to a single WebSocket connection.
// Gone connections are cleaned up rather than reported as failures.
func pushToConnection(ctx context.Context, client *apigatewaymanagementapi.Client, connectionID string, notice []byte) error {
	_, err := client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         notice,
	})
	if err != nil {
		var goneErr *apigwTypes.GoneException
		if errors.As(err, &goneErr) {
			log.Printf("Connection %s is gone, removing", connectionID)
			removeStaleConnection(ctx, connectionID)
			return nil
		}
		return fmt.Errorf("failed to push notice: %w", err)
	}

	return nil
}

func removeStaleConnection(ctx context.Context, connectionID string) {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(connectionsTable()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	if _, err := dynamoClient.DeleteItem(ctx, input); err != nil {
		log.Printf("Failed to remove stale connection %s: %v", connectionID, err)
	}
}

// handleNotify fans a tree change notice out to the target accounts
func handleNotify(ctx context.Context, msg NotifyMessage) error {
	if len(msg.TargetAccounts) == 0 {
		log.Printf("No target accounts for event %s, nothing to do", msg.EventType)
		return nil
	}

	notice := TreeNotice{
		Type:      "tree_changed",
		Event:     msg.EventType,
		Timestamp: time.Now().Unix(),
		Data:      msg.Payload,
	}

	noticeJSON, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	seen := make(map[string]bool)
	var targets []connection
	for _, accountID := range msg.TargetAccounts {
		connections, err := connectionsForAccount(ctx, accountID)
		if err != nil {
			log.Printf("Failed to get connections for account %s: %v", accountID, err)
			continue
		}
		for _, conn := range connections {
			if !seen[conn.ID] {
				seen[conn.ID] = true
				targets = append(targets, conn)
			}
		}
	}

	// Group by endpoint so each management client is built once
	endpointGroups := make(map[string][]string)
	for _, conn := range targets {
		endpointGroups[conn.Endpoint] = append(endpointGroups[conn.Endpoint], conn.ID)
	}

	successCount := 0
	failCount := 0

	for endpoint, connectionIDs := range endpointGroups {
		client := newManagementClient(endpoint)

		for _, connID := range connectionIDs {
			if err := pushToConnection(ctx, client, connID, noticeJSON); err != nil {
				log.Printf("Failed to push to connection %s: %v", connID, err)
				failCount++
			} else {
				successCount++
			}
		}
	}

	log.Printf("Notify complete: %d pushed, %d failed", successCount, failCount)

	if failCount > 0 && successCount == 0 {
		return fmt.Errorf("all notice pushes failed")
	}

	return nil
}

// accountsForEvent extracts the accounts whose trees are affected by an event
func accountsForEvent(detailType string, payload map[string]interface{}) []string {
	var accounts []string
	add := func(keys ...string) {
		for _, key := range keys {
			if id, ok := payload[key].(string); ok && id != "" {
				accounts = append(accounts, id)
			}
		}
	}

	switch detailType {
	case "relationship.created", "relationship.deleted":
		add("initiator_id", "target_id")
	case "member.added":
		add("added_by")
	case "member.linked", "member.unlinked":
		add("added_by", "account_id")
	case "member.match_suggested":
		add("added_by")
	}

	return accounts
}

// handler processes EventBridge events, SQS batches, and direct invocations
func handler(ctx context.Context, event json.RawMessage) error {
	var bridgeEvent events.CloudWatchEvent
	if err := json.Unmarshal(event, &bridgeEvent); err == nil && bridgeEvent.DetailType != "" {
		log.Printf("Processing domain event: %s", bridgeEvent.DetailType)

		var payload map[string]interface{}
		if err := json.Unmarshal(bridgeEvent.Detail, &payload); err != nil {
			return fmt.Errorf("failed to parse event detail: %w", err)
		}

		return handleNotify(ctx, NotifyMessage{
			EventType:      bridgeEvent.DetailType,
			TargetAccounts: accountsForEvent(bridgeEvent.DetailType, payload),
			Payload:        payload,
		})
	}

	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(event, &sqsEvent); err == nil && len(sqsEvent.Records) > 0 {
		for _, record := range sqsEvent.Records {
			var msg NotifyMessage
			if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
				log.Printf("Failed to parse SQS message: %v", err)
				continue
			}

			if err := handleNotify(ctx, msg); err != nil {
				log.Printf("Failed to process notify message: %v", err)
			}
		}
		return nil
	}

	var msg NotifyMessage
	if err := json.Unmarshal(event, &msg); err == nil && msg.EventType != "" {
		return handleNotify(ctx, msg)
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	log.Println("Running in local test mode")

	testMsg := NotifyMessage{
		EventType:      "relationship.created",
		TargetAccounts: []string{"test-account-456"},
		Payload: map[string]interface{}{
			"relationship_id": "test-relationship-123",
			"initiator_id":    "test-account-456",
			"target_id":       "test-account-789",
			"type":            "PARENT",
		},
	}

	testJSON, _ := json.Marshal(testMsg)

	if err := handler(context.Background(), testJSON); err != nil {
		log.Fatalf("Test message processing failed: %v", err)
	}

	log.Println("Test message processed successfully")
}
