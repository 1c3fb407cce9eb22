package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// AccountRepository implements the AccountRepository port using DynamoDB
type AccountRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.AccountRepository {
	return &AccountRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// accountItem represents the DynamoDB item structure for an account
type accountItem struct {
	PK          string `dynamodbav:"PK"` // ACCOUNT#<account_id>
	SK          string `dynamodbav:"SK"` // PROFILE
	GSI1PK      string `dynamodbav:"GSI1PK"` // EMAIL#<email> for login and duplicate checks
	GSI1SK      string `dynamodbav:"GSI1SK"` // ACCOUNT
	EntityType  string `dynamodbav:"EntityType"`
	AccountID   string `dynamodbav:"AccountID"`
	Email       string `dynamodbav:"Email"`
	DisplayName string `dynamodbav:"DisplayName"`
	NameLower   string `dynamodbav:"NameLower"` // For case-insensitive matching
	DateOfBirth string `dynamodbav:"DateOfBirth,omitempty"`
	Gender      string `dynamodbav:"Gender"`
	ImageURL    string `dynamodbav:"ImageURL,omitempty"`
	Visibility  string `dynamodbav:"Visibility"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

func accountPK(id valueobjects.PersonID) string {
	return fmt.Sprintf("ACCOUNT#%s", id.String())
}

// Save persists an account to DynamoDB
func (r *AccountRepository) Save(ctx context.Context, account *entities.Account) error {
	details := account.Details()
	item := accountItem{
		PK:          accountPK(account.ID()),
		SK:          "PROFILE",
		GSI1PK:      fmt.Sprintf("EMAIL#%s", account.Email()),
		GSI1SK:      "ACCOUNT",
		EntityType:  "ACCOUNT",
		AccountID:   account.ID().String(),
		Email:       account.Email(),
		DisplayName: details.DisplayName(),
		NameLower:   strings.ToLower(details.DisplayName()),
		DateOfBirth: details.DateOfBirthString(),
		Gender:      details.Gender().String(),
		ImageURL:    details.ImageURL(),
		Visibility:  string(account.Visibility()),
		CreatedAt:   account.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   account.UpdatedAt().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save account to DynamoDB",
			zap.Error(err),
			zap.String("accountID", account.ID().String()),
		)
		return fmt.Errorf("failed to save account: %w", err)
	}

	r.logger.Debug("Account saved",
		zap.String("accountID", account.ID().String()),
		zap.String("email", account.Email()),
	)

	return nil
}

// GetByID retrieves an account by its ID. Returns nil without error when
// the account does not exist.
func (r *AccountRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Account, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: accountPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return r.itemToAccount(item)
}

// GetByEmail retrieves an account by its email via GSI1. Returns nil
// without error when no account has the email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EMAIL#%s", email)},
			":sk": &types.AttributeValueMemberS{Value: "ACCOUNT"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query account by email: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return r.itemToAccount(item)
}

// Exists checks whether an account exists without loading the profile
func (r *AccountRepository) Exists(ctx context.Context, id valueobjects.PersonID) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: accountPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
		ProjectionExpression: aws.String("PK"),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return result.Item != nil, nil
}

// SearchByName finds accounts whose display name starts with the given
// prefix, case-insensitive. Used by the member match suggester.
func (r *AccountRepository) SearchByName(ctx context.Context, name string, limit int) ([]*entities.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("EntityType = :entityType AND begins_with(NameLower, :name)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":entityType": &types.AttributeValueMemberS{Value: "ACCOUNT"},
			":name":       &types.AttributeValueMemberS{Value: strings.ToLower(name)},
		},
		Limit: aws.Int32(int32(limit)),
	}

	result, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts by name: %w", err)
	}

	accounts := make([]*entities.Account, 0, len(result.Items))
	for _, raw := range result.Items {
		var item accountItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal account item", zap.Error(err))
			continue
		}

		account, err := r.itemToAccount(item)
		if err != nil {
			r.logger.Warn("Failed to reconstruct account",
				zap.String("accountID", item.AccountID),
				zap.Error(err),
			)
			continue
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// itemToAccount reconstructs the domain entity from a stored item
func (r *AccountRepository) itemToAccount(item accountItem) (*entities.Account, error) {
	id, err := valueobjects.NewPersonIDFromString(item.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account ID in store: %w", err)
	}

	var dob *time.Time
	if item.DateOfBirth != "" {
		parsed, err := time.Parse(valueobjects.DateLayout, item.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth in store: %w", err)
		}
		dob = &parsed
	}

	details := valueobjects.ReconstructPersonDetails(
		item.DisplayName, dob, valueobjects.ParseGender(item.Gender),
	).WithImageURL(item.ImageURL)

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return entities.ReconstructAccount(
		id,
		item.Email,
		details,
		entities.ProfileVisibility(item.Visibility),
		createdAt,
		updatedAt,
	), nil
}
