package dynamo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jpcadena/aws-session-management/internal/domain/sessions"
	"github.com/jpcadena/aws-session-management/internal/storage/dynamo"
)

type fakeClient struct {
	updateInput   *dynamodb.UpdateItemInput
	updateOutput  *dynamodb.UpdateItemOutput
	updateErr     error
	getInput      *dynamodb.GetItemInput
	getOutput     *dynamodb.GetItemOutput
	getErr        error
	describeInput *dynamodb.DescribeTableInput
	describeErr   error
}

func (f *fakeClient) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateInput = params
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOutput, nil
}

func (f *fakeClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.getInput = params
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOutput, nil
}

func (f *fakeClient) DescribeTable(_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.describeInput = params
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{ItemCount: aws.Int64(3)},
	}, nil
}

func TestUpdateIssuesSetExpression(t *testing.T) {
	fake := &fakeClient{
		updateOutput: &dynamodb.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{
				"last_action": &types.AttributeValueMemberS{Value: "some_action"},
			},
		},
	}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	session, err := repo.Update(context.Background(), "some_uuid", "some_action")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if session.UserID != "some_uuid" || session.LastAction != "some_action" {
		t.Fatalf("unexpected session %+v", session)
	}

	in := fake.updateInput
	if in == nil {
		t.Fatalf("expected UpdateItem to be called")
	}
	if got := aws.ToString(in.TableName); got != "UserSessions" {
		t.Fatalf("unexpected table %q", got)
	}
	if got := aws.ToString(in.UpdateExpression); got != "SET last_action = :action" {
		t.Fatalf("unexpected update expression %q", got)
	}
	if in.ReturnValues != types.ReturnValueUpdatedNew {
		t.Fatalf("expected UPDATED_NEW return values, got %v", in.ReturnValues)
	}
	key, ok := in.Key["user_id"].(*types.AttributeValueMemberS)
	if !ok || key.Value != "some_uuid" {
		t.Fatalf("unexpected key %+v", in.Key)
	}
	val, ok := in.ExpressionAttributeValues[":action"].(*types.AttributeValueMemberS)
	if !ok || val.Value != "some_action" {
		t.Fatalf("unexpected expression values %+v", in.ExpressionAttributeValues)
	}
}

func TestUpdateReturnsStoredValue(t *testing.T) {
	// DynamoDB reports the attribute value it actually stored; the repository
	// must surface that instead of echoing the input.
	fake := &fakeClient{
		updateOutput: &dynamodb.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{
				"last_action": &types.AttributeValueMemberS{Value: "normalized_action"},
			},
		},
	}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	session, err := repo.Update(context.Background(), "u1", "raw_action")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if session.LastAction != "normalized_action" {
		t.Fatalf("expected stored value, got %q", session.LastAction)
	}
}

func TestUpdateMissingTable(t *testing.T) {
	fake := &fakeClient{
		updateErr: &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")},
	}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	_, err := repo.Update(context.Background(), "u1", "login")
	if !errors.Is(err, sessions.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestUpdateOperationFailure(t *testing.T) {
	fake := &fakeClient{updateErr: errors.New("throughput exceeded")}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	_, err := repo.Update(context.Background(), "u1", "login")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, sessions.ErrStoreUnavailable) {
		t.Fatalf("operation failures should not map to ErrStoreUnavailable: %v", err)
	}
}

func TestFind(t *testing.T) {
	fake := &fakeClient{
		getOutput: &dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"user_id":     &types.AttributeValueMemberS{Value: "some_uuid"},
				"last_action": &types.AttributeValueMemberS{Value: "some_action"},
			},
		},
	}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	session, err := repo.Find(context.Background(), "some_uuid")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if session.UserID != "some_uuid" || session.LastAction != "some_action" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestFindUnknownUser(t *testing.T) {
	fake := &fakeClient{getOutput: &dynamodb.GetItemOutput{}}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	fake := &fakeClient{}
	repo := dynamo.NewSessionRepository(fake, "UserSessions", nil)

	if err := repo.Health(context.Background()); err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if got := aws.ToString(fake.describeInput.TableName); got != "UserSessions" {
		t.Fatalf("expected DescribeTable on UserSessions, got %q", got)
	}

	fake.describeErr = &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	if err := repo.Health(context.Background()); err == nil {
		t.Fatalf("expected error when table is missing")
	}
}
