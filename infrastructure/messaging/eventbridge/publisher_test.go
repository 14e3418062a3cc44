package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"mindmap/application/ports"
	"mindmap/domain/events"
	pkgerrors "mindmap/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.EventPublisher = NopPublisher{}
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*eventbridge.PutEventsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func savedEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, events.NewMindMapSaved(fmt.Sprintf("m%d", i), "Plans", 3, time.Now()))
	}
	return out
}

func TestPublisher_PublishBatchChunks(t *testing.T) {
	ctx := context.Background()
	client := new(mockEventBridge)
	var sizes []int
	client.On("PutEvents", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			sizes = append(sizes, len(args.Get(1).(*eventbridge.PutEventsInput).Entries))
		}).
		Return(&eventbridge.PutEventsOutput{}, nil)

	err := NewPublisher(client, "mindmap-bus", nil).PublishBatch(ctx, savedEvents(23))

	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestPublisher_Entry(t *testing.T) {
	ctx := context.Background()
	client := new(mockEventBridge)
	client.On("PutEvents", ctx, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		if len(in.Entries) != 1 {
			return false
		}
		e := in.Entries[0]
		var detail map[string]interface{}
		if err := json.Unmarshal([]byte(aws.ToString(e.Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(e.Source) == events.SourceMindMap &&
			aws.ToString(e.DetailType) == "mindmap.deleted" &&
			aws.ToString(e.EventBusName) == "mindmap-bus" &&
			detail["mind_map_id"] == "m1"
	})).Return(&eventbridge.PutEventsOutput{}, nil)

	err := NewPublisher(client, "mindmap-bus", nil).Publish(ctx, events.NewMindMapDeleted("m1", time.Now()))

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublisher_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("client error", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", ctx, mock.Anything).Return(nil, errors.New("throttled"))

		err := NewPublisher(client, "bus", nil).PublishBatch(ctx, savedEvents(1))

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	})

	t.Run("failed entries", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", ctx, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("ok")},
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
			},
		}, nil)

		err := NewPublisher(client, "bus", nil).PublishBatch(ctx, savedEvents(2))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 events failed to publish")
	})

	t.Run("empty batch makes no call", func(t *testing.T) {
		client := new(mockEventBridge)
		assert.NoError(t, NewPublisher(client, "bus", nil).PublishBatch(ctx, nil))
		client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
	})
}
