// Package dynamodb implements the read-only entity store on a single
// DynamoDB table. Clubs and connections live in one table partitioned by
// entity kind through a GSI, so each list operation is exactly one query.
package dynamodb

import (
	"context"
	"fmt"

	"clubgraph-backend/domain/club"
	pkgerrors "clubgraph-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	entityTypeClub       = "CLUB"
	entityTypeConnection = "CONNECTION"
)

// EntityStore reads clubs and connections from DynamoDB.
type EntityStore struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewEntityStore creates a DynamoDB-backed entity store.
func NewEntityStore(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *EntityStore {
	return &EntityStore{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type clubItem struct {
	ID         string            `dynamodbav:"id"`
	EntityType string            `dynamodbav:"entityType"`
	Name       string            `dynamodbav:"name"`
	League     string            `dynamodbav:"league"`
	Active     bool              `dynamodbav:"active"`
	PosX       float64           `dynamodbav:"posX"`
	PosY       float64           `dynamodbav:"posY"`
	Attributes map[string]string `dynamodbav:"attributes,omitempty"`
}

type connectionItem struct {
	ID         string `dynamodbav:"id"`
	EntityType string `dynamodbav:"entityType"`
	SourceID   string `dynamodbav:"sourceId"`
	TargetID   string `dynamodbav:"targetId"`
	ConnType   string `dynamodbav:"connType"`
	Strength   int    `dynamodbav:"strength"`
	Label      string `dynamodbav:"label,omitempty"`
	Active     bool   `dynamodbav:"active"`
}

// ListClubs returns all clubs matching the filter in a single paginated query.
func (s *EntityStore) ListClubs(ctx context.Context, filter club.Filter) ([]club.Club, error) {
	items, err := s.queryEntities(ctx, entityTypeClub, filter)
	if err != nil {
		return nil, pkgerrors.NewStoreError("ListClubs", err)
	}

	clubs := make([]club.Club, 0, len(items))
	for _, item := range items {
		var ci clubItem
		if err := attributevalue.UnmarshalMap(item, &ci); err != nil {
			s.logger.Warn("Failed to unmarshal club item", zap.Error(err))
			continue
		}
		clubs = append(clubs, club.Club{
			ID:         ci.ID,
			Name:       ci.Name,
			League:     ci.League,
			Active:     ci.Active,
			X:          ci.PosX,
			Y:          ci.PosY,
			Attributes: ci.Attributes,
		})
	}

	return clubs, nil
}

// ListConnections returns all connections matching the filter in a single
// paginated query.
func (s *EntityStore) ListConnections(ctx context.Context, filter club.Filter) ([]club.Connection, error) {
	items, err := s.queryEntities(ctx, entityTypeConnection, filter)
	if err != nil {
		return nil, pkgerrors.NewStoreError("ListConnections", err)
	}

	connections := make([]club.Connection, 0, len(items))
	for _, item := range items {
		var ci connectionItem
		if err := attributevalue.UnmarshalMap(item, &ci); err != nil {
			s.logger.Warn("Failed to unmarshal connection item", zap.Error(err))
			continue
		}
		connections = append(connections, club.Connection{
			ID:       ci.ID,
			SourceID: ci.SourceID,
			TargetID: ci.TargetID,
			Type:     club.ConnectionType(ci.ConnType),
			Strength: ci.Strength,
			Label:    ci.Label,
			Active:   ci.Active,
		})
	}

	return connections, nil
}

// queryEntities runs one logical query against the entity-type GSI,
// following pagination until exhausted. Inactive rows are filtered
// server-side unless the filter includes them.
func (s *EntityStore) queryEntities(ctx context.Context, entityType string, filter club.Filter) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("entityType").Equal(expression.Value(entityType))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if !filter.IncludeInactive {
		builder = builder.WithFilter(expression.Name("active").Equal(expression.Value(true)))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(s.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		}

		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s entities: %w", entityType, err)
		}

		items = append(items, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return items, nil
}
