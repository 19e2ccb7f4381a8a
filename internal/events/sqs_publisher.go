package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/ironbridge-it/website-api/internal/leads"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends lead events to an SQS queue. It satisfies leads.Notifier.
type SQSPublisher struct {
	client   sqsSender
	queueURL string
	logger   *logging.Logger
}

// NewSQSPublisher creates a publisher around the provided SQS client.
func NewSQSPublisher(client sqsSender, queueURL string, logger *logging.Logger) *SQSPublisher {
	if client == nil {
		panic("events: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("events: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// LeadCreated publishes lead.created.v1 for a stored lead.
func (p *SQSPublisher) LeadCreated(ctx context.Context, lead *leads.Lead) error {
	if lead == nil || lead.ID == "" {
		return fmt.Errorf("events: stored lead required")
	}
	env, err := NewEnvelope("lead:"+lead.ID, "", leadCreatedFrom(lead))
	if err != nil {
		return err
	}
	return p.Publish(ctx, env)
}

// Publish sends a single envelope as the message body.
func (p *SQSPublisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(env.EventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("events: failed to send SQS message: %w", err)
	}
	var messageID string
	if out != nil {
		messageID = aws.ToString(out.MessageId)
	}
	p.logger.Debug("event published", "event_type", env.EventType, "event_id", env.EventID.String(), "message_id", messageID)
	return nil
}

func leadCreatedFrom(lead *leads.Lead) LeadCreatedV1 {
	evt := LeadCreatedV1{
		LeadID:     lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		Message:    lead.Message,
		Source:     lead.Source,
		ReceivedAt: lead.CreatedAt,
	}
	if lead.Company != nil {
		evt.Company = *lead.Company
	}
	if lead.Phone != nil {
		evt.Phone = *lead.Phone
	}
	if lead.Service != nil {
		evt.Service = string(*lead.Service)
	}
	return evt
}
