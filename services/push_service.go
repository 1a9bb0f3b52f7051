package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is the subset of the SNS client used for fan-out.
type SNSPublisher interface {
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// PushService forwards domain events to an SNS topic so mobile push and
// other subscribers can react to them.
type PushService struct {
	sns      SNSPublisher
	topicArn string
}

func NewPushService(cfg aws.Config, topicArn string) *PushService {
	return &PushService{sns: awssns.NewFromConfig(cfg), topicArn: topicArn}
}

func newPushServiceWithClient(client SNSPublisher, topicArn string) *PushService {
	return &PushService{sns: client, topicArn: topicArn}
}

func (p *PushService) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := map[string]string{
		"default": string(raw),
		"GCM":     string(mustJSON(map[string]any{"data": e})),
	}
	body, _ := json.Marshal(msg)

	_, err = p.sns.Publish(ctx, &awssns.PublishInput{
		TopicArn:         aws.String(p.topicArn),
		MessageStructure: aws.String("json"),
		Message:          aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String(e.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
