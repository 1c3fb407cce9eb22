package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// RelationshipRepository implements the RelationshipRepository port using
// DynamoDB. The (initiator, target, type) triple forms the item key, so
// duplicate edges fail at the storage layer, and pair writes run as a
// single transaction so a half edge can never land alone.
type RelationshipRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewRelationshipRepository creates a new RelationshipRepository
func NewRelationshipRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.RelationshipRepository {
	return &RelationshipRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// relationshipItem represents the DynamoDB item structure for one edge half
type relationshipItem struct {
	PK          string `dynamodbav:"PK"` // EDGE#<initiator_id>
	SK          string `dynamodbav:"SK"` // TARGET#<target_id>#TYPE#<type>
	GSI1PK      string `dynamodbav:"GSI1PK"` // EDGEID#<relationship_id> for lookup by ID
	GSI1SK      string `dynamodbav:"GSI1SK"` // EDGE
	GSI2PK      string `dynamodbav:"GSI2PK"` // TARGET#<target_id> for reverse traversal
	GSI2SK      string `dynamodbav:"GSI2SK"` // INITIATOR#<initiator_id>
	EntityType  string `dynamodbav:"EntityType"`
	EdgeID      string `dynamodbav:"EdgeID"`
	InitiatorID string `dynamodbav:"InitiatorID"`
	TargetID    string `dynamodbav:"TargetID"`
	RelType     string `dynamodbav:"RelType"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

func edgePK(initiatorID valueobjects.PersonID) string {
	return fmt.Sprintf("EDGE#%s", initiatorID.String())
}

func edgeSK(targetID valueobjects.PersonID, relType valueobjects.RelationshipType) string {
	return fmt.Sprintf("TARGET#%s#TYPE#%s", targetID.String(), relType.String())
}

func (r *RelationshipRepository) edgeToItem(edge *entities.Relationship) relationshipItem {
	return relationshipItem{
		PK:          edgePK(edge.InitiatorID()),
		SK:          edgeSK(edge.TargetID(), edge.Type()),
		GSI1PK:      fmt.Sprintf("EDGEID#%s", edge.ID().String()),
		GSI1SK:      "EDGE",
		GSI2PK:      fmt.Sprintf("TARGET#%s", edge.TargetID().String()),
		GSI2SK:      fmt.Sprintf("INITIATOR#%s", edge.InitiatorID().String()),
		EntityType:  "RELATIONSHIP",
		EdgeID:      edge.ID().String(),
		InitiatorID: edge.InitiatorID().String(),
		TargetID:    edge.TargetID().String(),
		RelType:     edge.Type().String(),
		CreatedAt:   edge.CreatedAt().Format(time.RFC3339),
	}
}

// CreatePair writes an edge and its reciprocal twin in one transaction.
// Either half colliding with an existing (initiator, target, type) triple
// cancels the whole transaction and surfaces as a duplicate error.
func (r *RelationshipRepository) CreatePair(ctx context.Context, primary, reciprocal *entities.Relationship) error {
	primaryItem, err := attributevalue.MarshalMap(r.edgeToItem(primary))
	if err != nil {
		return fmt.Errorf("failed to marshal edge: %w", err)
	}
	reciprocalItem, err := attributevalue.MarshalMap(r.edgeToItem(reciprocal))
	if err != nil {
		return fmt.Errorf("failed to marshal reciprocal edge: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                primaryItem,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                reciprocalItem,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
		},
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		if isConditionalCancellation(err) {
			r.logger.Debug("Edge pair already exists",
				zap.String("initiatorID", primary.InitiatorID().String()),
				zap.String("targetID", primary.TargetID().String()),
				zap.String("type", primary.Type().String()),
			)
			return pkgerrors.NewDuplicateRelationshipError(
				primary.InitiatorID().String(),
				primary.TargetID().String(),
				primary.Type().String(),
			)
		}
		r.logger.Error("Failed to write edge pair",
			zap.Error(err),
			zap.String("edgeID", primary.ID().String()),
		)
		return fmt.Errorf("failed to create edge pair: %w", err)
	}

	r.logger.Debug("Edge pair created",
		zap.String("edgeID", primary.ID().String()),
		zap.String("reciprocalID", reciprocal.ID().String()),
	)

	return nil
}

// DeletePair removes both halves of a pair in one transaction
func (r *RelationshipRepository) DeletePair(ctx context.Context, primaryID, reciprocalID valueobjects.RelationshipID) error {
	primary, err := r.GetByID(ctx, primaryID)
	if err != nil {
		return err
	}
	reciprocal, err := r.GetByID(ctx, reciprocalID)
	if err != nil {
		return err
	}
	if primary == nil || reciprocal == nil {
		return pkgerrors.ErrRelationshipNotFound
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: edgePK(primary.InitiatorID())},
						"SK": &types.AttributeValueMemberS{Value: edgeSK(primary.TargetID(), primary.Type())},
					},
				},
			},
			{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: edgePK(reciprocal.InitiatorID())},
						"SK": &types.AttributeValueMemberS{Value: edgeSK(reciprocal.TargetID(), reciprocal.Type())},
					},
				},
			},
		},
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		r.logger.Error("Failed to delete edge pair",
			zap.Error(err),
			zap.String("edgeID", primaryID.String()),
			zap.String("reciprocalID", reciprocalID.String()),
		)
		return fmt.Errorf("failed to delete edge pair: %w", err)
	}

	r.logger.Debug("Edge pair deleted",
		zap.String("edgeID", primaryID.String()),
		zap.String("reciprocalID", reciprocalID.String()),
	)

	return nil
}

// Delete removes a single edge half. Deleting a missing edge is a no-op.
func (r *RelationshipRepository) Delete(ctx context.Context, id valueobjects.RelationshipID) error {
	edge, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if edge == nil {
		return nil
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: edgePK(edge.InitiatorID())},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(edge.TargetID(), edge.Type())},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}

	return nil
}

// GetByID retrieves an edge by its ID via GSI1. Returns nil without
// error when the edge does not exist.
func (r *RelationshipRepository) GetByID(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EDGEID#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "EDGE"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query edge: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item relationshipItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge: %w", err)
	}

	return r.itemToEdge(item)
}

// GetByInitiator retrieves all edges a person initiated
func (r *RelationshipRepository) GetByInitiator(ctx context.Context, initiatorID valueobjects.PersonID) ([]*entities.Relationship, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: edgePK(initiatorID)},
		},
	}

	var edges []*entities.Relationship

	// Handle pagination
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query edges by initiator: %w", err)
		}

		for _, raw := range result.Items {
			edge, err := r.unmarshalEdge(raw)
			if err != nil {
				r.logger.Warn("Skipping malformed edge item", zap.Error(err))
				continue
			}
			edges = append(edges, edge)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return edges, nil
}

// GetByTarget retrieves all edges pointing at a person via GSI2
func (r *RelationshipRepository) GetByTarget(ctx context.Context, targetID valueobjects.PersonID) ([]*entities.Relationship, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("TARGET#%s", targetID.String())},
		},
	}

	var edges []*entities.Relationship

	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query edges by target: %w", err)
		}

		for _, raw := range result.Items {
			edge, err := r.unmarshalEdge(raw)
			if err != nil {
				r.logger.Warn("Skipping malformed edge item", zap.Error(err))
				continue
			}
			edges = append(edges, edge)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return edges, nil
}

// FindReciprocal looks up the twin of an edge by its natural key:
// initiated by the edge's target, pointing back at the edge's initiator,
// with the reciprocal type. Returns nil without error when missing.
func (r *RelationshipRepository) FindReciprocal(ctx context.Context, of *entities.Relationship) (*entities.Relationship, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: edgePK(of.TargetID())},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(of.InitiatorID(), of.Type().Reciprocal())},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get reciprocal edge: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	return r.unmarshalEdge(result.Item)
}

// Exists checks for an edge by its unique (initiator, target, type) triple
func (r *RelationshipRepository) Exists(ctx context.Context, initiatorID, targetID valueobjects.PersonID, relType valueobjects.RelationshipType) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: edgePK(initiatorID)},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(targetID, relType)},
		},
		ProjectionExpression: aws.String("PK"),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to check edge existence: %w", err)
	}

	return result.Item != nil, nil
}

func (r *RelationshipRepository) unmarshalEdge(raw map[string]types.AttributeValue) (*entities.Relationship, error) {
	var item relationshipItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge: %w", err)
	}
	return r.itemToEdge(item)
}

// itemToEdge reconstructs the domain entity from a stored item
func (r *RelationshipRepository) itemToEdge(item relationshipItem) (*entities.Relationship, error) {
	id, err := valueobjects.NewRelationshipIDFromString(item.EdgeID)
	if err != nil {
		return nil, fmt.Errorf("invalid edge ID in store: %w", err)
	}
	initiatorID, err := valueobjects.NewPersonIDFromString(item.InitiatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid initiator ID in store: %w", err)
	}
	targetID, err := valueobjects.NewPersonIDFromString(item.TargetID)
	if err != nil {
		return nil, fmt.Errorf("invalid target ID in store: %w", err)
	}
	relType, err := valueobjects.ParseRelationshipType(item.RelType)
	if err != nil {
		return nil, fmt.Errorf("invalid relationship type in store: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)

	return entities.ReconstructRelationship(
		id,
		initiatorID,
		targetID,
		relType,
		createdAt,
	), nil
}

// isConditionalCancellation reports whether a transaction was cancelled
// because a conditional check failed on one of its items
func isConditionalCancellation(err error) bool {
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		var conditional *types.ConditionalCheckFailedException
		return errors.As(err, &conditional)
	}
	for _, reason := range cancelled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
