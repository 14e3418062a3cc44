// Package main implements the WebSocket $connect Lambda handler.
// It authenticates the connection and hands its id back to the client, which
// passes it as connectionId when opening an editing session so the session's
// projection is mirrored onto the socket.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"mindmap/infrastructure/config"
	"mindmap/infrastructure/di"
	"mindmap/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// ConnectHandler validates websocket connection requests
type ConnectHandler struct {
	validator *auth.JWTValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewConnectHandler creates a connect handler
func NewConnectHandler(validator *auth.JWTValidator, logger *zap.Logger) *ConnectHandler {
	return &ConnectHandler{validator: validator, logger: logger, now: time.Now}
}

// Welcome is the body returned on a successful connect
type Welcome struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Timestamp    int64  `json:"timestamp"`
}

// Handle processes one $connect request
func (h *ConnectHandler) Handle(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	token := request.QueryStringParameters["token"]
	if token == "" {
		token = bearer(request.Headers)
	}
	if token == "" {
		h.logger.Warn("websocket connect without token", zap.String("connection_id", connectionID))
		return respond(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}), nil
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		h.logger.Warn("websocket connect rejected",
			zap.String("connection_id", connectionID),
			zap.Error(err))
		return respond(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}), nil
	}

	h.logger.Info("websocket connection established",
		zap.String("connection_id", connectionID),
		zap.String("user_id", claims.UserID))

	return respond(http.StatusOK, Welcome{
		Type:         "connection_established",
		ConnectionID: connectionID,
		UserID:       claims.UserID,
		Timestamp:    h.now().Unix(),
	}), nil
}

func bearer(headers map[string]string) string {
	for _, key := range []string{"Authorization", "authorization"} {
		if value, ok := headers[key]; ok {
			return strings.TrimSpace(strings.TrimPrefix(value, "Bearer "))
		}
	}
	return ""
}

func respond(status int, body interface{}) events.APIGatewayProxyResponse {
	data, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(data)}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	validator, err := di.ProvideJWTValidator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create token validator", zap.Error(err))
	}

	lambda.Start(NewConnectHandler(validator, logger).Handle)
}
