package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*awssns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &awssns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestPushService_Publish(t *testing.T) {
	client := &fakeSNS{}
	push := newPushServiceWithClient(client, "arn:aws:sns:us-east-1:1:hostel")

	err := push.Publish(context.Background(), Event{Kind: EventMealLiked, MealID: 5, UserEmail: "a@x.test"})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:1:hostel", aws.ToString(in.TopicArn))
	assert.Equal(t, "json", aws.ToString(in.MessageStructure))
	assert.Equal(t, EventMealLiked, aws.ToString(in.MessageAttributes["kind"].StringValue))

	var msg map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &msg))
	var e Event
	require.NoError(t, json.Unmarshal([]byte(msg["default"]), &e))
	assert.Equal(t, uint(5), e.MealID)
	assert.Contains(t, msg["GCM"], `"data"`)
}

func TestPushService_PublishError(t *testing.T) {
	push := newPushServiceWithClient(&fakeSNS{err: errors.New("topic gone")}, "arn")
	err := push.Publish(context.Background(), Event{Kind: EventMealRated})
	assert.ErrorContains(t, err, "topic gone")
}

type fakeLabels struct {
	out *rekognition.DetectLabelsOutput
	err error
	in  *rekognition.DetectLabelsInput
}

func (f *fakeLabels) DetectLabels(_ context.Context, in *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	f.in = in
	return f.out, f.err
}

func labelsOut(labels ...rektypes.Label) *rekognition.DetectLabelsOutput {
	return &rekognition.DetectLabelsOutput{Labels: labels}
}

func TestRekognitionService_DetectFood(t *testing.T) {
	tests := []struct {
		name   string
		labels []rektypes.Label
		food   bool
	}{
		{"food label", []rektypes.Label{{Name: aws.String("Dish")}}, true},
		{"food category", []rektypes.Label{{
			Name:       aws.String("Curry"),
			Categories: []rektypes.LabelCategory{{Name: aws.String("Food and Beverage")}},
		}}, true},
		{"no food", []rektypes.Label{{Name: aws.String("Bicycle")}, {Name: aws.String("Road")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLabels{out: labelsOut(tt.labels...)}
			svc := &RekognitionService{client: fake, minConfidence: 80}

			food, labels, err := svc.DetectFood(context.Background(), []byte("img"))
			require.NoError(t, err)
			assert.Equal(t, tt.food, food)
			assert.Len(t, labels, len(tt.labels))
			assert.Equal(t, float32(80), aws.ToFloat32(fake.in.MinConfidence))
		})
	}
}

func TestRekognitionService_Error(t *testing.T) {
	svc := &RekognitionService{client: &fakeLabels{err: errors.New("bad image")}}
	_, _, err := svc.DetectFood(context.Background(), nil)
	assert.ErrorContains(t, err, "bad image")
}
