package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI captures the queue operations the publisher issues, so tests can
// substitute a fake client.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
}

// SQSPublisher sends session events to an Amazon SQS queue.
type SQSPublisher struct {
	client    SQSAPI
	queueURL  string
	queueName string
	logger    *slog.Logger
}

// NewSQSPublisher constructs a publisher for the given queue. queueName is
// only used for health lookups; messages go to queueURL.
func NewSQSPublisher(client SQSAPI, queueURL, queueName string, logger *slog.Logger) *SQSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQSPublisher{client: client, queueURL: queueURL, queueName: queueName, logger: logger}
}

// Publish encodes the event as JSON and sends it without delay.
func (p *SQSPublisher) Publish(ctx context.Context, event SessionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(p.queueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: 0,
	})
	if err != nil {
		return fmt.Errorf("send session event: %w", err)
	}

	p.logger.Info("session event sent", "message_id", aws.ToString(out.MessageId))
	return nil
}

// Health verifies the queue is reachable by resolving its URL from the name.
func (p *SQSPublisher) Health(ctx context.Context) error {
	out, err := p.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(p.queueName)})
	if err != nil {
		return fmt.Errorf("resolve queue %s: %w", p.queueName, err)
	}

	p.logger.Debug("sqs queue reachable", "queue_url", aws.ToString(out.QueueUrl))
	return nil
}

var _ Publisher = (*SQSPublisher)(nil)
