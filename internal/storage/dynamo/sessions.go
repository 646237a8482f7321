// Package dynamo implements session persistence on Amazon DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
)

// API captures the DynamoDB operations the repository issues, so tests can
// substitute a fake client.
type API interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// SessionRepository implements sessions.Repository on a DynamoDB table keyed
// by user_id.
type SessionRepository struct {
	client API
	table  string
	logger *slog.Logger
}

// NewSessionRepository constructs a repository over the given table.
func NewSessionRepository(client API, table string, logger *slog.Logger) *SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepository{client: client, table: table, logger: logger}
}

type sessionItem struct {
	UserID     string `dynamodbav:"user_id"`
	LastAction string `dynamodbav:"last_action"`
}

// Update upserts the last action for a user and returns the value DynamoDB
// reports back for the updated attribute.
func (r *SessionRepository) Update(ctx context.Context, userID, action string) (sessions.Session, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression: aws.String("SET last_action = :action"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":action": &types.AttributeValueMemberS{Value: action},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return sessions.Session{}, classify("update session", err)
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return sessions.Session{}, fmt.Errorf("decode updated attributes: %w", err)
	}

	r.logger.Info("session action updated", "table", r.table, "user_id", userID)
	return sessions.Session{UserID: userID, LastAction: item.LastAction}, nil
}

// Find loads the session stored for a user.
func (r *SessionRepository) Find(ctx context.Context, userID string) (sessions.Session, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return sessions.Session{}, classify("find session", err)
	}
	if len(out.Item) == 0 {
		return sessions.Session{}, sessions.ErrNotFound
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return sessions.Session{}, fmt.Errorf("decode session item: %w", err)
	}
	return sessions.Session{UserID: item.UserID, LastAction: item.LastAction}, nil
}

// Health verifies the table is reachable.
func (r *SessionRepository) Health(ctx context.Context) error {
	out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", r.table, err)
	}

	r.logger.Debug("dynamodb table reachable", "table", r.table, "item_count", aws.ToInt64(out.Table.ItemCount))
	return nil
}

// classify maps DynamoDB failures onto domain errors. A missing table means
// the store itself is unavailable; anything else is an operation failure.
func classify(op string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s: %s: %w", op, err, sessions.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ sessions.Repository = (*SessionRepository)(nil)
