package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mindmap/application/ports"
	pkgerrors "mindmap/pkg/errors"
	"mindmap/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	entityTypeMindMap = "MINDMAP"
	metadataSK        = "METADATA"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repositories
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// MindMapRepository implements ports.MindMapRepository on a single DynamoDB table.
// Records live at PK=MINDMAP#<id>, SK=METADATA; the owner index keys on
// GSI1PK=OWNER#<owner> and sorts by GSI1SK=<updated at>.
type MindMapRepository struct {
	client     DynamoDBAPI
	tableName  string
	ownerIndex string
	logger     *zap.Logger
	now        func() time.Time
}

// NewMindMapRepository creates a new MindMapRepository
func NewMindMapRepository(client DynamoDBAPI, tableName, ownerIndex string, logger *zap.Logger) *MindMapRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MindMapRepository{
		client:     client,
		tableName:  tableName,
		ownerIndex: ownerIndex,
		logger:     logger,
		now:        time.Now,
	}
}

// mindMapItem represents the DynamoDB item structure for a mind map
type mindMapItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	GSI1PK          string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK          string `dynamodbav:"GSI1SK,omitempty"`
	EntityType      string `dynamodbav:"EntityType"`
	MindMapID       string `dynamodbav:"MindMapID"`
	OwnerID         string `dynamodbav:"OwnerID"`
	Title           string `dynamodbav:"Title"`
	MindMapDataJSON string `dynamodbav:"MindMapDataJson"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
	UpdatedAt       string `dynamodbav:"UpdatedAt"`
	Version         int    `dynamodbav:"Version"`
}

func mindMapKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MINDMAP#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func ownerPK(ownerID string) string {
	return fmt.Sprintf("OWNER#%s", ownerID)
}

// GetByID retrieves a mind map
func (r *MindMapRepository) GetByID(ctx context.Context, id string) (*ports.MindMap, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.NewValidationError("mind map id is required")
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       mindMapKey(id),
	})
	if err != nil {
		r.logger.Error("Failed to get mind map", zap.String("mindMapID", id), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("GetItem", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("mind map %s", id))
	}

	var item mindMapItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to unmarshal mind map", err)
	}
	return item.toMindMap(), nil
}

// Create stores a new mind map under a fresh id
func (r *MindMapRepository) Create(ctx context.Context, ownerID string, payload ports.MindMapPayload) (*ports.MindMap, error) {
	id := uuid.New().String()
	now := utils.FormatTimestamp(r.now())

	item := mindMapItem{
		PK:              fmt.Sprintf("MINDMAP#%s", id),
		SK:              metadataSK,
		GSI1SK:          now,
		EntityType:      entityTypeMindMap,
		MindMapID:       id,
		OwnerID:         ownerID,
		Title:           payload.Title,
		MindMapDataJSON: payload.MindMapDataJSON,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	if ownerID != "" {
		item.GSI1PK = ownerPK(ownerID)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to marshal mind map").WithCause(err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build expression").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("mind map %s already exists", id))
		}
		r.logger.Error("Failed to create mind map", zap.String("mindMapID", id), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("PutItem", err)
	}

	r.logger.Info("Mind map created",
		zap.String("mindMapID", id),
		zap.String("ownerID", ownerID),
	)
	return item.toMindMap(), nil
}

// Update overwrites the title and document of an existing mind map
func (r *MindMapRepository) Update(ctx context.Context, id string, payload ports.MindMapPayload) (*ports.MindMap, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.NewValidationError("mind map id is required")
	}
	now := utils.FormatTimestamp(r.now())

	update := expression.
		Set(expression.Name("Title"), expression.Value(payload.Title)).
		Set(expression.Name("MindMapDataJson"), expression.Value(payload.MindMapDataJSON)).
		Set(expression.Name("UpdatedAt"), expression.Value(now)).
		Set(expression.Name("GSI1SK"), expression.Value(now)).
		Add(expression.Name("Version"), expression.Value(1))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build expression").WithCause(err)
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       mindMapKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("mind map %s", id))
		}
		r.logger.Error("Failed to update mind map", zap.String("mindMapID", id), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("UpdateItem", err)
	}

	var item mindMapItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to unmarshal mind map", err)
	}

	r.logger.Debug("Mind map updated", zap.String("mindMapID", id), zap.Int("version", item.Version))
	return item.toMindMap(), nil
}

// Delete removes a mind map
func (r *MindMapRepository) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build expression").WithCause(err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      mindMapKey(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError(fmt.Sprintf("mind map %s", id))
		}
		r.logger.Error("Failed to delete mind map", zap.String("mindMapID", id), zap.Error(err))
		return pkgerrors.NewDatabaseError("DeleteItem", err)
	}

	r.logger.Info("Mind map deleted", zap.String("mindMapID", id))
	return nil
}

// List returns the owner's mind maps, most recently updated first
func (r *MindMapRepository) List(ctx context.Context, ownerID string) ([]ports.MindMapSummary, error) {
	keyExpr := expression.Key("GSI1PK").Equal(expression.Value(ownerPK(ownerID)))
	projection := expression.NamesList(
		expression.Name("MindMapID"),
		expression.Name("Title"),
		expression.Name("UpdatedAt"),
	)

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyExpr).
		WithProjection(projection).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build expression").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.ownerIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	summaries := []ports.MindMapSummary{}
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to list mind maps", zap.String("ownerID", ownerID), zap.Error(err))
			return nil, pkgerrors.NewDatabaseError("Query", err)
		}

		for _, raw := range page.Items {
			var item mindMapItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to parse mind map item", zap.Error(err))
				continue
			}
			summaries = append(summaries, ports.MindMapSummary{
				ID:        item.MindMapID,
				Title:     item.Title,
				UpdatedAt: utils.ParseTimestamp(item.UpdatedAt),
			})
		}
	}

	return summaries, nil
}

func (i mindMapItem) toMindMap() *ports.MindMap {
	return &ports.MindMap{
		ID:              i.MindMapID,
		OwnerID:         i.OwnerID,
		Title:           i.Title,
		MindMapDataJSON: i.MindMapDataJSON,
		CreatedAt:       utils.ParseTimestamp(i.CreatedAt),
		UpdatedAt:       utils.ParseTimestamp(i.UpdatedAt),
	}
}

