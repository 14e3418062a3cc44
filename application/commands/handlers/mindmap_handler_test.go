package handlers

import (
	"context"
	"testing"

	"mindmap/application/commands"
	"mindmap/application/commands/bus"
	"mindmap/application/ports"
	"mindmap/domain/events"
	"mindmap/infrastructure/persistence/memory"
	pkgerrors "mindmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleData = `{"meta":{"name":"Plans","author":"User","version":"1.0"},"format":"node_tree",` +
	`"data":{"id":"root","topic":"Central","children":[{"id":"a","topic":"Idea A","side":"left"}]}}`

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

func newMindMapBus(t *testing.T, publisher ports.EventPublisher) (*bus.CommandBus, *memory.MindMapRepository) {
	t.Helper()
	repo := memory.NewMindMapRepository(zap.NewNop())
	b := bus.NewCommandBus()
	require.NoError(t, NewMindMapHandler(repo, publisher, zap.NewNop()).Register(b))
	return b, repo
}

func TestMindMapHandler_Lifecycle(t *testing.T) {
	ctx := context.Background()
	publisher := new(mockPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(e events.DomainEvent) bool {
		created, ok := e.(events.MindMapCreated)
		return ok && created.NodeCount == 2 && created.Title == "Plans"
	})).Return(nil).Once()
	publisher.On("Publish", ctx, mock.AnythingOfType("events.MindMapSaved")).Return(nil).Once()
	publisher.On("Publish", ctx, mock.AnythingOfType("events.MindMapDeleted")).Return(nil).Once()

	b, repo := newMindMapBus(t, publisher)

	res, err := b.Send(ctx, commands.CreateMindMapCommand{OwnerID: "user123", Title: "Plans", MindMapDataJSON: sampleData})
	require.NoError(t, err)
	created := res.Data.(*ports.MindMap)
	assert.Equal(t, "user123", created.OwnerID)

	res, err = b.Send(ctx, commands.UpdateMindMapCommand{
		OwnerID:         "user123",
		MindMapID:       created.ID,
		Title:           "Renamed",
		MindMapDataJSON: sampleData,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", res.Data.(*ports.MindMap).Title)

	_, err = b.Send(ctx, commands.DeleteMindMapCommand{OwnerID: "user123", MindMapID: created.ID})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
	publisher.AssertExpectations(t)
}

func TestMindMapHandler_Errors(t *testing.T) {
	ctx := context.Background()
	b, repo := newMindMapBus(t, nil)
	repo.Put(ports.MindMap{ID: "m1", OwnerID: "owner", Title: "Theirs", MindMapDataJSON: sampleData})

	tests := []struct {
		name  string
		cmd   bus.Command
		check func(error) bool
	}{
		{
			name:  "missing title",
			cmd:   commands.CreateMindMapCommand{OwnerID: "user123", MindMapDataJSON: sampleData},
			check: pkgerrors.IsValidation,
		},
		{
			name:  "data is not json",
			cmd:   commands.CreateMindMapCommand{OwnerID: "user123", Title: "x", MindMapDataJSON: "{"},
			check: pkgerrors.IsValidation,
		},
		{
			name:  "data is not an envelope",
			cmd:   commands.CreateMindMapCommand{OwnerID: "user123", Title: "x", MindMapDataJSON: `{"format":"freemind"}`},
			check: pkgerrors.IsValidation,
		},
		{
			name: "update of a foreign record",
			cmd: commands.UpdateMindMapCommand{
				OwnerID:         "user123",
				MindMapID:       "m1",
				Title:           "Mine now",
				MindMapDataJSON: sampleData,
			},
			check: pkgerrors.IsNotFound,
		},
		{
			name:  "delete of a foreign record",
			cmd:   commands.DeleteMindMapCommand{OwnerID: "user123", MindMapID: "m1"},
			check: pkgerrors.IsNotFound,
		},
		{
			name:  "delete of a missing record",
			cmd:   commands.DeleteMindMapCommand{OwnerID: "user123", MindMapID: "nope"},
			check: pkgerrors.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Send(ctx, tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}

	stored, err := repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Theirs", stored.Title)
}
