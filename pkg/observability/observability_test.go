package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.PutMetricDataOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func dimension(in *cloudwatch.PutMetricDataInput, name string) string {
	for _, d := range in.MetricData[0].Dimensions {
		if *d.Name == name {
			return *d.Value
		}
	}
	return ""
}

func TestMetrics_RecordOperation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		err    error
		status string
	}{
		{name: "success", status: "success"},
		{name: "failure", err: errors.New("boom"), status: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockCloudWatch)
			client.On("PutMetricData", ctx, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
				return *in.Namespace == "MindMap" &&
					len(in.MetricData) == 2 &&
					dimension(in, "Operation") == "save" &&
					dimension(in, "Status") == tt.status
			})).Return(&cloudwatch.PutMetricDataOutput{}, nil).Once()

			NewMetrics("MindMap", client, zap.NewNop()).RecordOperation(ctx, "save", 15*time.Millisecond, tt.err)

			client.AssertExpectations(t)
		})
	}
}

func TestMetrics_FailureIsLogged(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)

	client := new(mockCloudWatch)
	client.On("PutMetricData", ctx, mock.Anything).Return(nil, errors.New("throttled"))

	NewMetrics("MindMap", client, zap.New(core)).RecordDocumentSize(ctx, 4)

	assert.Equal(t, 1, logs.FilterMessage("failed to send metrics").Len())
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordOperation(ctx, "load", time.Millisecond, nil)
		m.RecordDocumentSize(ctx, 1)
		m.RecordHistoryDepth(ctx, 1)
		NewMetrics("MindMap", nil, nil).RecordHistoryDepth(ctx, 3)
	})
}

func TestTracer_DisabledRunsFunction(t *testing.T) {
	ctx := context.Background()
	want := errors.New("inner")

	for _, tracer := range []*Tracer{nil, NewTracer("mindmap", false)} {
		called := false
		err := tracer.TraceFunction(ctx, "op", func(context.Context) error {
			called = true
			return want
		})

		assert.True(t, called)
		assert.Equal(t, want, err)
		assert.NotPanics(t, func() {
			tracer.AddAnnotation(ctx, "k", "v")
			tracer.AddMetadata(ctx, "k", 1)
			tracer.RecordError(ctx, want)
		})
	}
}
