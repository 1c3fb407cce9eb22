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

// ManualMemberRepository implements the ManualMemberRepository port using
// DynamoDB. Members live under their adder's partition so a tree build
// can fetch everything an account recorded in one query.
type ManualMemberRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewManualMemberRepository creates a new ManualMemberRepository
func NewManualMemberRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ManualMemberRepository {
	return &ManualMemberRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// memberItem represents the DynamoDB item structure for a manual member
type memberItem struct {
	PK              string `dynamodbav:"PK"` // ACCOUNT#<adder_id>
	SK              string `dynamodbav:"SK"` // MEMBER#<member_id>
	GSI1PK          string `dynamodbav:"GSI1PK"` // MEMBERID#<member_id> for direct lookup
	GSI1SK          string `dynamodbav:"GSI1SK"` // PROFILE
	EntityType      string `dynamodbav:"EntityType"`
	MemberID        string `dynamodbav:"MemberID"`
	AddedBy         string `dynamodbav:"AddedBy"`
	DisplayName     string `dynamodbav:"DisplayName"`
	NameLower       string `dynamodbav:"NameLower"`
	DateOfBirth     string `dynamodbav:"DateOfBirth,omitempty"`
	Gender          string `dynamodbav:"Gender"`
	RelationToAdder string `dynamodbav:"RelationToAdder"`
	Notes           string `dynamodbav:"Notes,omitempty"`
	LinkedAccountID string `dynamodbav:"LinkedAccountID,omitempty"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
	UpdatedAt       string `dynamodbav:"UpdatedAt"`
}

// Save persists a member to DynamoDB
func (r *ManualMemberRepository) Save(ctx context.Context, member *entities.ManualMember) error {
	details := member.Details()
	item := memberItem{
		PK:              accountPK(member.AddedBy()),
		SK:              fmt.Sprintf("MEMBER#%s", member.ID().String()),
		GSI1PK:          fmt.Sprintf("MEMBERID#%s", member.ID().String()),
		GSI1SK:          "PROFILE",
		EntityType:      "MANUAL_MEMBER",
		MemberID:        member.ID().String(),
		AddedBy:         member.AddedBy().String(),
		DisplayName:     details.DisplayName(),
		NameLower:       strings.ToLower(details.DisplayName()),
		DateOfBirth:     details.DateOfBirthString(),
		Gender:          details.Gender().String(),
		RelationToAdder: member.RelationToAdder().String(),
		Notes:           member.Notes(),
		CreatedAt:       member.CreatedAt().Format(time.RFC3339),
		UpdatedAt:       member.UpdatedAt().Format(time.RFC3339),
	}
	if member.IsLinked() {
		item.LinkedAccountID = member.LinkedAccountID().String()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save member to DynamoDB",
			zap.Error(err),
			zap.String("memberID", member.ID().String()),
		)
		return fmt.Errorf("failed to save member: %w", err)
	}

	r.logger.Debug("Member saved",
		zap.String("memberID", member.ID().String()),
		zap.String("addedBy", member.AddedBy().String()),
	)

	return nil
}

// GetByID retrieves a member by its ID via GSI1. Returns nil without
// error when the member does not exist.
func (r *ManualMemberRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.ManualMember, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEMBERID#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item memberItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal member: %w", err)
	}

	return r.itemToMember(item)
}

// GetByAdder retrieves all members recorded by an account
func (r *ManualMemberRepository) GetByAdder(ctx context.Context, adderID valueobjects.PersonID) ([]*entities.ManualMember, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: accountPK(adderID)},
			":sk": &types.AttributeValueMemberS{Value: "MEMBER#"},
		},
	}

	var members []*entities.ManualMember

	// Handle pagination
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query members: %w", err)
		}

		for _, raw := range result.Items {
			var item memberItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal member item", zap.Error(err))
				continue
			}

			member, err := r.itemToMember(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct member",
					zap.String("memberID", item.MemberID),
					zap.Error(err),
				)
				continue
			}
			members = append(members, member)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return members, nil
}

// FindMatches returns unlinked members whose recorded name matches the
// given name, narrowed by date of birth when one is supplied. Feeds the
// link suggestions produced on account registration.
func (r *ManualMemberRepository) FindMatches(ctx context.Context, name string, dateOfBirth *time.Time) ([]*entities.ManualMember, error) {
	filter := "EntityType = :entityType AND NameLower = :name AND attribute_not_exists(LinkedAccountID)"
	values := map[string]types.AttributeValue{
		":entityType": &types.AttributeValueMemberS{Value: "MANUAL_MEMBER"},
		":name":       &types.AttributeValueMemberS{Value: strings.ToLower(strings.TrimSpace(name))},
	}
	if dateOfBirth != nil {
		filter += " AND DateOfBirth = :dob"
		values[":dob"] = &types.AttributeValueMemberS{Value: dateOfBirth.Format(valueobjects.DateLayout)}
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
	}

	result, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for member matches: %w", err)
	}

	members := make([]*entities.ManualMember, 0, len(result.Items))
	for _, raw := range result.Items {
		var item memberItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}

		member, err := r.itemToMember(item)
		if err != nil {
			continue
		}
		members = append(members, member)
	}

	return members, nil
}

// Delete removes a member. Deleting a missing member is a no-op.
func (r *ManualMemberRepository) Delete(ctx context.Context, id valueobjects.PersonID) error {
	member, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: accountPK(member.AddedBy())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEMBER#%s", id.String())},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	r.logger.Debug("Member deleted",
		zap.String("memberID", id.String()),
	)

	return nil
}

// itemToMember reconstructs the domain entity from a stored item
func (r *ManualMemberRepository) itemToMember(item memberItem) (*entities.ManualMember, error) {
	id, err := valueobjects.NewPersonIDFromString(item.MemberID)
	if err != nil {
		return nil, fmt.Errorf("invalid member ID in store: %w", err)
	}
	addedBy, err := valueobjects.NewPersonIDFromString(item.AddedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid adder ID in store: %w", err)
	}

	var dob *time.Time
	if item.DateOfBirth != "" {
		parsed, err := time.Parse(valueobjects.DateLayout, item.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth in store: %w", err)
		}
		dob = &parsed
	}

	var linkedAccountID *valueobjects.PersonID
	if item.LinkedAccountID != "" {
		linked, err := valueobjects.NewPersonIDFromString(item.LinkedAccountID)
		if err != nil {
			return nil, fmt.Errorf("invalid linked account ID in store: %w", err)
		}
		linkedAccountID = &linked
	}

	relation, err := valueobjects.ParseRelationshipType(item.RelationToAdder)
	if err != nil {
		return nil, fmt.Errorf("invalid relation type in store: %w", err)
	}

	details := valueobjects.ReconstructPersonDetails(
		item.DisplayName, dob, valueobjects.ParseGender(item.Gender),
	)

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return entities.ReconstructManualMember(
		id,
		addedBy,
		details,
		item.Notes,
		relation,
		linkedAccountID,
		createdAt,
		updatedAt,
	), nil
}
