package handlers

import (
	"context"
	"testing"
	"time"

	"mindmap/application/commands"
	"mindmap/application/ports"
	"mindmap/application/queries"
	"mindmap/application/queries/bus"
	"mindmap/application/services"
	"mindmap/domain/core/valueobjects"
	"mindmap/infrastructure/notify"
	"mindmap/infrastructure/persistence/memory"
	"mindmap/infrastructure/render"
	"mindmap/pkg/observability"
	pkgerrors "mindmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type queryFixture struct {
	bus      *bus.QueryBus
	repo     *memory.MindMapRepository
	registry *services.SessionRegistry
}

func newQueryFixture(t *testing.T, renderer func() ports.Renderer) *queryFixture {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewMindMapRepository(logger)
	registry := services.NewSessionRegistry(
		services.SessionDeps{Repository: repo, Logger: logger},
		func(string, string) ports.Renderer { return renderer() },
		func(string) ports.Notifier { return notify.NewRecorder() },
	)

	b := bus.NewQueryBus()
	require.NoError(t, RegisterQueryHandlers(b,
		NewMindMapQueryHandler(repo, logger),
		NewSessionQueryHandler(registry),
		bus.NewMetricsMiddleware(observability.NewMetrics("MindMap", nil, logger)),
	))
	return &queryFixture{bus: b, repo: repo, registry: registry}
}

func TestMindMapQueries(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t, func() ports.Renderer { return nil })
	now := time.Now()
	f.repo.Put(ports.MindMap{ID: "m1", OwnerID: "user123", Title: "Old", UpdatedAt: now.Add(-time.Hour)})
	f.repo.Put(ports.MindMap{ID: "m2", OwnerID: "user123", Title: "New", UpdatedAt: now})
	f.repo.Put(ports.MindMap{ID: "m3", OwnerID: "other", Title: "Foreign", UpdatedAt: now})

	got, err := f.bus.Ask(ctx, queries.GetMindMapQuery{OwnerID: "user123", MindMapID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "Old", got.(*ports.MindMap).Title)

	_, err = f.bus.Ask(ctx, queries.GetMindMapQuery{OwnerID: "user123", MindMapID: "m3"})
	assert.True(t, pkgerrors.IsNotFound(err))

	list, err := f.bus.Ask(ctx, queries.ListMindMapsQuery{OwnerID: "user123"})
	require.NoError(t, err)
	summaries := list.([]ports.MindMapSummary)
	require.Len(t, summaries, 2)
	assert.Equal(t, "m2", summaries[0].ID)

	empty, err := f.bus.Ask(ctx, queries.ListMindMapsQuery{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.bus.Ask(ctx, queries.ListMindMapsQuery{})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSessionQueries(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t, func() ports.Renderer { return render.Multi{render.NewProjection()} })

	session, err := f.registry.Open(ctx, services.OpenRequest{OwnerID: "user123"})
	require.NoError(t, err)
	var childID string
	require.NoError(t, f.registry.Do(session.ID(), "user123", func(s *services.EditorSession) error {
		childID, err = s.AddChild("root", "Idea", valueobjects.SideLeft)
		return err
	}))
	ref := commands.SessionRef{SessionID: session.ID(), OwnerID: "user123"}

	got, err := f.bus.Ask(ctx, queries.GetSessionQuery{SessionRef: ref})
	require.NoError(t, err)
	view := got.(*services.SessionView)
	assert.Equal(t, childID, view.Selected)
	assert.Equal(t, 2, view.History.Length)

	got, err = f.bus.Ask(ctx, queries.GetProjectionQuery{SessionRef: ref})
	require.NoError(t, err)
	projection := got.(*queries.ProjectionResult)
	require.NotNil(t, projection.Tree)
	require.Len(t, projection.Tree.Children, 1)
	assert.Equal(t, view.Tree.Children[0].ID, projection.Tree.Children[0].ID)
	assert.Equal(t, "Idea", projection.Tree.Children[0].Label)
	assert.Equal(t, []string{childID}, projection.Selected)

	_, err = f.bus.Ask(ctx, queries.GetSessionQuery{SessionRef: commands.SessionRef{SessionID: session.ID(), OwnerID: "other"}})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSessionQueries_NoProjection(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t, func() ports.Renderer { return nil })

	session, err := f.registry.Open(ctx, services.OpenRequest{OwnerID: "user123"})
	require.NoError(t, err)

	_, err = f.bus.Ask(ctx, queries.GetProjectionQuery{SessionRef: commands.SessionRef{SessionID: session.ID(), OwnerID: "user123"}})
	assert.True(t, pkgerrors.IsNotFound(err))
}
