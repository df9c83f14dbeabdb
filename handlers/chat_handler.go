package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/llm-cascade/cascade"
	"github.com/upb/llm-cascade/middleware"
	"github.com/upb/llm-cascade/providers"
	"github.com/upb/llm-cascade/utils"
	"go.uber.org/zap"
)

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
}

// ChatMessage represents a single chat message
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatCompletionResponse represents a chat completion response
type ChatCompletionResponse struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Created  int64  `json:"created"`
}

// CompletionService defines the interface for cascade completion operations
type CompletionService interface {
	Complete(ctx context.Context, messages []providers.Message) (*providers.Result, error)
}

// ChatHandler handles chat completion HTTP requests
type ChatHandler struct {
	service CompletionService
	timeout time.Duration
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler. A zero timeout disables the
// per-request deadline.
func NewChatHandler(service CompletionService, timeout time.Duration, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		timeout: timeout,
		logger:  logger,
	}
}

// HandleChatCompletion handles POST /api/v1/chat/completions
func (h *ChatHandler) HandleChatCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var chatReq ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&chatReq); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request", utils.ValidationDetails(err))
		return
	}

	messages := make([]providers.Message, len(chatReq.Messages))
	for i, msg := range chatReq.Messages {
		messages[i] = providers.Message{
			Role:    providers.Role(msg.Role),
			Content: msg.Content,
		}
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.service.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, cascade.ErrAllProvidersFailed) {
			h.logger.Error("cascade exhausted",
				zap.String("request_id", requestID))
			_ = utils.WriteBadGateway(w, err.Error())
			return
		}
		h.logger.Error("completion failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	response := ChatCompletionResponse{
		ID:       uuid.New().String(),
		Content:  result.Content,
		Provider: result.Provider,
		Created:  time.Now().Unix(),
	}

	h.logger.Info("chat completion served",
		zap.String("request_id", requestID),
		zap.String("provider", result.Provider))

	_ = utils.WriteOK(w, response)
}
