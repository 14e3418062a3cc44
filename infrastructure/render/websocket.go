package render

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"mindmap/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"
)

// Frame types pushed to websocket clients
const (
	FrameLoad          = "render.load"
	FrameFitView       = "render.fit_view"
	FrameAddChild      = "render.add_child"
	FrameRemoveChild   = "render.remove_child"
	FrameUpdateLabel   = "render.update_label"
	FrameSetSelected   = "render.set_selected"
	FrameClearSelected = "render.clear_selected"
)

// ConnectionPoster is the subset of the API Gateway management client used to push frames
type ConnectionPoster interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// Frame is one projection update sent over the websocket
type Frame struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id"`
	Timestamp int64              `json:"timestamp"`
	Tree      *entities.NodeView `json:"tree,omitempty"`
	Node      *entities.NodeView `json:"node,omitempty"`
	NodeID    string             `json:"node_id,omitempty"`
	ParentID  string             `json:"parent_id,omitempty"`
	Label     string             `json:"label,omitempty"`
	Selected  *bool              `json:"selected,omitempty"`
}

// WebSocketRenderer pushes projection frames to one API Gateway websocket connection.
// Once the connection is gone further frames are dropped.
type WebSocketRenderer struct {
	client       ConnectionPoster
	sessionID    string
	connectionID string
	timeout      time.Duration
	logger       *zap.Logger

	mu   sync.Mutex
	gone bool
}

// NewWebSocketRenderer creates a renderer bound to connectionID
func NewWebSocketRenderer(client ConnectionPoster, sessionID, connectionID string, timeout time.Duration, logger *zap.Logger) *WebSocketRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebSocketRenderer{
		client:       client,
		sessionID:    sessionID,
		connectionID: connectionID,
		timeout:      timeout,
		logger:       logger.With(zap.String("session_id", sessionID), zap.String("connection_id", connectionID)),
	}
}

func (w *WebSocketRenderer) Load(tree entities.NodeView) {
	w.send(Frame{Type: FrameLoad, Tree: &tree})
}

func (w *WebSocketRenderer) FitView() {
	w.send(Frame{Type: FrameFitView})
}

func (w *WebSocketRenderer) AddChild(node entities.NodeView, parentID string) {
	w.send(Frame{Type: FrameAddChild, Node: &node, ParentID: parentID})
}

func (w *WebSocketRenderer) RemoveChild(nodeID string) {
	w.send(Frame{Type: FrameRemoveChild, NodeID: nodeID})
}

func (w *WebSocketRenderer) UpdateLabel(nodeID, label string) {
	w.send(Frame{Type: FrameUpdateLabel, NodeID: nodeID, Label: label})
}

func (w *WebSocketRenderer) SetSelected(nodeID string, selected bool) {
	w.send(Frame{Type: FrameSetSelected, NodeID: nodeID, Selected: aws.Bool(selected)})
}

func (w *WebSocketRenderer) ClearSelected() {
	w.send(Frame{Type: FrameClearSelected})
}

// Gone reports whether the connection was closed by the client
func (w *WebSocketRenderer) Gone() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gone
}

func (w *WebSocketRenderer) send(frame Frame) {
	if w.Gone() {
		return
	}

	frame.SessionID = w.sessionID
	frame.Timestamp = time.Now().Unix()
	data, err := json.Marshal(frame)
	if err != nil {
		w.logger.Error("failed to marshal render frame", zap.String("type", frame.Type), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	_, err = w.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(w.connectionID),
		Data:         data,
	})
	if err == nil {
		return
	}

	var goneErr *apigwTypes.GoneException
	if errors.As(err, &goneErr) {
		w.mu.Lock()
		w.gone = true
		w.mu.Unlock()
		w.logger.Info("websocket connection is gone, projection detached")
		return
	}
	w.logger.Warn("failed to push render frame", zap.String("type", frame.Type), zap.Error(err))
}
