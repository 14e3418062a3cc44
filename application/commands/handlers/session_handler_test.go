package handlers

import (
	"context"
	"testing"

	"mindmap/application/commands"
	"mindmap/application/commands/bus"
	"mindmap/application/ports"
	"mindmap/application/services"
	"mindmap/infrastructure/notify"
	"mindmap/infrastructure/persistence/memory"
	"mindmap/infrastructure/render"
	pkgerrors "mindmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type handlerFixture struct {
	bus   *bus.CommandBus
	repo  *memory.MindMapRepository
	owner string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewMindMapRepository(logger)
	registry := services.NewSessionRegistry(
		services.SessionDeps{Repository: repo, Logger: logger},
		func(string, string) ports.Renderer { return render.NewProjection() },
		func(string) ports.Notifier { return notify.NewRecorder() },
	)

	b := bus.NewCommandBus(bus.RecoveryMiddleware(logger), bus.LoggingMiddleware(logger))
	require.NoError(t, NewSessionHandler(registry, logger).Register(b))
	return &handlerFixture{bus: b, repo: repo, owner: "user123"}
}

func (f *handlerFixture) send(t *testing.T, cmd bus.Command) (*commands.SessionResult, error) {
	t.Helper()
	res, err := f.bus.Send(context.Background(), cmd)
	if res == nil {
		return nil, err
	}
	out, _ := res.Data.(*commands.SessionResult)
	return out, err
}

func (f *handlerFixture) open(t *testing.T, mindMapID string) commands.SessionRef {
	t.Helper()
	res, err := f.send(t, commands.OpenSessionCommand{OwnerID: f.owner, MindMapID: mindMapID})
	require.NoError(t, err)
	return commands.SessionRef{SessionID: res.Session.SessionID, OwnerID: f.owner}
}

func TestSessionHandler_EditAndSave(t *testing.T) {
	f := newHandlerFixture(t)
	ref := f.open(t, "new")

	res, err := f.send(t, commands.AddChildCommand{SessionRef: ref, ParentID: "root", Label: "Idea A", Side: "left"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.NodeID)
	assert.Equal(t, res.NodeID, res.Session.Selected)
	require.Len(t, res.Session.Tree.Children, 1)
	assert.Equal(t, "left", res.Session.Tree.Children[0].Side)

	res, err = f.send(t, commands.AddSiblingCommand{SessionRef: ref, NodeID: res.NodeID, Label: "Idea B"})
	require.NoError(t, err)
	assert.Len(t, res.Session.Tree.Children, 2)

	res, err = f.send(t, commands.RenameNodeCommand{SessionRef: ref, NodeID: "root", Label: "Central"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Central", res.Session.Tree.Label)

	_, err = f.send(t, commands.SetTitleCommand{SessionRef: ref, Title: "Plans"})
	require.NoError(t, err)

	res, err = f.send(t, commands.SaveCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Session.MindMapID)
	assert.Equal(t, []ports.Notification{{Level: ports.LevelSuccess, Message: services.MsgCreatedAndSaved}}, res.Notifications)

	stored, err := f.repo.GetByID(context.Background(), res.Session.MindMapID)
	require.NoError(t, err)
	assert.Equal(t, "Plans", stored.Title)

	reopened := f.open(t, stored.ID)
	assert.NotEqual(t, ref.SessionID, reopened.SessionID)
}

func TestSessionHandler_UndoRedo(t *testing.T) {
	f := newHandlerFixture(t)
	ref := f.open(t, "")

	_, err := f.send(t, commands.AddChildCommand{SessionRef: ref, ParentID: "root"})
	require.NoError(t, err)

	res, err := f.send(t, commands.UndoCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Session.Tree.Children)
	assert.True(t, res.Session.History.CanRedo)

	res, err = f.send(t, commands.UndoCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, []ports.Notification{{Level: ports.LevelWarning, Message: services.MsgNothingToUndo}}, res.Notifications)

	res, err = f.send(t, commands.RedoCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.Len(t, res.Session.Tree.Children, 1)

	res, err = f.send(t, commands.ApplyHistoryCommand{SessionRef: ref, Index: 0})
	require.NoError(t, err)
	assert.Empty(t, res.Session.Tree.Children)
	assert.False(t, res.Session.History.CanUndo)
	assert.True(t, res.Session.History.CanRedo)

	_, err = f.send(t, commands.ApplyHistoryCommand{SessionRef: ref, Index: 7})
	assert.True(t, pkgerrors.IsValidation(err))

	res, err = f.send(t, commands.ClearHistoryCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Session.History.Length)
}

func TestSessionHandler_DeleteAndSelect(t *testing.T) {
	f := newHandlerFixture(t)
	ref := f.open(t, "")

	child, err := f.send(t, commands.AddChildCommand{SessionRef: ref, ParentID: "root"})
	require.NoError(t, err)
	_, err = f.send(t, commands.AddChildCommand{SessionRef: ref, ParentID: child.NodeID})
	require.NoError(t, err)

	res, err := f.send(t, commands.SelectNodeCommand{SessionRef: ref, NodeID: child.NodeID})
	require.NoError(t, err)
	assert.Equal(t, child.NodeID, res.Session.Selected)

	_, err = f.send(t, commands.SelectNodeCommand{SessionRef: ref, NodeID: "ghost"})
	assert.True(t, pkgerrors.IsNotFound(err))

	res, err = f.send(t, commands.DeleteNodeCommand{SessionRef: ref, NodeID: child.NodeID})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Removed)
	assert.Empty(t, res.Session.Selected)

	res, err = f.send(t, commands.DeleteNodeCommand{SessionRef: ref, NodeID: "root"})
	assert.True(t, pkgerrors.IsValidation(err))
	require.NotNil(t, res)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, ports.LevelWarning, res.Notifications[0].Level)
}

func TestSessionHandler_EmptyTargetSurfacesWarning(t *testing.T) {
	f := newHandlerFixture(t)
	ref := f.open(t, "")

	tests := []struct {
		name    string
		cmd     bus.Command
		message string
	}{
		{name: "add child", cmd: commands.AddChildCommand{SessionRef: ref}, message: "no parent selected"},
		{name: "add sibling", cmd: commands.AddSiblingCommand{SessionRef: ref}, message: "select a node first"},
		{name: "delete", cmd: commands.DeleteNodeCommand{SessionRef: ref}, message: "select a node to delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.send(t, tt.cmd)
			assert.True(t, pkgerrors.IsValidation(err))
			require.NotNil(t, res)
			assert.Equal(t, []ports.Notification{{Level: ports.LevelWarning, Message: tt.message}}, res.Notifications)
			require.NotNil(t, res.Session.Tree)
			assert.Empty(t, res.Session.Tree.Children)
		})
	}
}

func TestSessionHandler_OpenMissingMindMap(t *testing.T) {
	f := newHandlerFixture(t)

	res, err := f.send(t, commands.OpenSessionCommand{OwnerID: f.owner, MindMapID: "missing"})

	require.NoError(t, err)
	assert.Empty(t, res.Session.MindMapID)
	assert.Equal(t, []ports.Notification{{Level: ports.LevelError, Message: services.MsgLoadFailed}}, res.Notifications)
}

func TestSessionHandler_Errors(t *testing.T) {
	f := newHandlerFixture(t)
	ref := f.open(t, "")

	tests := []struct {
		name  string
		cmd   bus.Command
		check func(error) bool
	}{
		{
			name:  "missing session id",
			cmd:   commands.UndoCommand{SessionRef: commands.SessionRef{OwnerID: f.owner}},
			check: pkgerrors.IsValidation,
		},
		{
			name:  "invalid side",
			cmd:   commands.AddChildCommand{SessionRef: ref, ParentID: "root", Side: "up"},
			check: pkgerrors.IsValidation,
		},
		{
			name:  "foreign owner",
			cmd:   commands.RedoCommand{SessionRef: commands.SessionRef{SessionID: ref.SessionID, OwnerID: "intruder"}},
			check: pkgerrors.IsNotFound,
		},
		{
			name:  "unknown session",
			cmd:   commands.SaveCommand{SessionRef: commands.SessionRef{SessionID: "nope", OwnerID: f.owner}},
			check: pkgerrors.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.send(t, tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestSessionHandler_Close(t *testing.T) {
	f := newHandlerFixture(t)
	ref := f.open(t, "")

	_, err := f.send(t, commands.CloseSessionCommand{SessionRef: ref})
	require.NoError(t, err)

	_, err = f.send(t, commands.UndoCommand{SessionRef: ref})
	assert.True(t, pkgerrors.IsNotFound(err))
}
