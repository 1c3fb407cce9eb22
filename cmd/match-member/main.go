// Package main implements the Lambda handler for member match discovery.
// When an account registers, it looks for unlinked manual members whose
// name and date of birth match, and publishes link suggestions for their
// adders to act on.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	domainevents "familytree-backend/domain/events"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/infrastructure/config"
	"familytree-backend/infrastructure/di"
)

var container *di.Container

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	container.Logger.Info("Match-member handler initialized")
}

// MatchRequest represents the input for match discovery
type MatchRequest struct {
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// MatchResponse reports the suggestions that were published
type MatchResponse struct {
	AccountID  string   `json:"account_id"`
	MemberIDs  []string `json:"member_ids"`
	TotalFound int      `json:"total_found"`
}

// HandleMatchDiscovery finds unlinked manual members matching a newly
// registered account and publishes one suggestion per match
func HandleMatchDiscovery(ctx context.Context, request MatchRequest) (*MatchResponse, error) {
	if !container.DomainConfig.EnableLinkSuggestions {
		container.Logger.Info("Link suggestions disabled, skipping match discovery")
		return &MatchResponse{AccountID: request.AccountID}, nil
	}

	accountID, err := valueobjects.NewPersonIDFromString(request.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account ID: %w", err)
	}

	var dateOfBirth *time.Time
	if request.DateOfBirth != "" {
		parsed, err := time.Parse(valueobjects.DateLayout, request.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth: %w", err)
		}
		dateOfBirth = &parsed
	}

	matches, err := container.MemberRepo.FindMatches(ctx, request.DisplayName, dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("match lookup failed: %w", err)
	}

	response := &MatchResponse{
		AccountID:  request.AccountID,
		TotalFound: len(matches),
	}

	for _, member := range matches {
		suggestion := domainevents.NewMemberMatchSuggested(
			member.ID(), member.AddedBy(), accountID, time.Now(),
		)
		if err := container.EventBus.Publish(ctx, suggestion); err != nil {
			container.Logger.Error("Failed to publish match suggestion",
				zap.String("member_id", member.ID().String()),
				zap.String("account_id", request.AccountID),
				zap.Error(err),
			)
			continue
		}
		response.MemberIDs = append(response.MemberIDs, member.ID().String())
	}

	container.Logger.Info("Match discovery completed",
		zap.String("account_id", request.AccountID),
		zap.Int("found", response.TotalFound),
		zap.Int("published", len(response.MemberIDs)),
	)

	return response, nil
}

// handler dispatches EventBridge and direct invocations
func handler(ctx context.Context, event json.RawMessage) error {
	var bridgeEvent awsevents.CloudWatchEvent
	if err := json.Unmarshal(event, &bridgeEvent); err == nil && bridgeEvent.DetailType == "account.registered" {
		var registered struct {
			AccountID   string `json:"account_id"`
			DisplayName string `json:"display_name"`
			DateOfBirth string `json:"date_of_birth"`
		}
		if err := json.Unmarshal(bridgeEvent.Detail, &registered); err != nil {
			return fmt.Errorf("failed to parse account.registered event: %w", err)
		}

		_, err := HandleMatchDiscovery(ctx, MatchRequest{
			AccountID:   registered.AccountID,
			DisplayName: registered.DisplayName,
			DateOfBirth: registered.DateOfBirth,
		})
		return err
	}

	// Direct invocation, used for backfills
	var request MatchRequest
	if err := json.Unmarshal(event, &request); err == nil && request.AccountID != "" {
		_, err := HandleMatchDiscovery(ctx, request)
		return err
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	// Local testing mode
	log.Println("Running in local test mode")

	response, err := HandleMatchDiscovery(context.Background(), MatchRequest{
		AccountID:   "00000000-0000-0000-0000-000000000001",
		DisplayName: "Test Person",
	})
	if err != nil {
		log.Fatalf("Test request processing failed: %v", err)
	}

	responseJSON, _ := json.MarshalIndent(response, "", "  ")
	log.Printf("Test response:\n%s", responseJSON)
}
