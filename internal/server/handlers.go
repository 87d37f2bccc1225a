// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopassist/internal/common/logger"
	"shopassist/internal/models"
)

// Responder produces the bot reply for one message. *orchestrator.Orchestrator
// satisfies it.
type Responder interface {
	Respond(ctx context.Context, userID, conversationID, message string) string
}

// ConversationStore persists and retrieves conversation turns.
// *store.ConversationLog satisfies it.
type ConversationStore interface {
	Append(ctx context.Context, userID, conversationID string, sender models.Sender, text string, ts time.Time) error
	Fetch(ctx context.Context, userID, conversationID string) ([]models.Turn, error)
}

type chatRequest struct {
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Handler holds the HTTP-facing dependencies.
type Handler struct {
	responder     Responder
	conversations ConversationStore
	logger        logger.Logger
}

func NewHandler(responder Responder, conversations ConversationStore, log logger.Logger) *Handler {
	return &Handler{
		responder:     responder,
		conversations: conversations,
		logger:        log.WithFields(map[string]interface{}{"component": "http-handler"}),
	}
}

// Chat handles POST /api/chat. A missing conversation_id gets a fresh UUID so
// the client can continue the thread with the returned identifier.
func (h *Handler) Chat(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	if err := validateChatRequest(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	ctx := c.Request.Context()
	log := h.logger.WithFields(map[string]interface{}{
		"userId":         req.UserID,
		"conversationId": conversationID,
	})

	// Turn persistence is best-effort; a log failure never blocks the reply.
	if err := h.conversations.Append(ctx, req.UserID, conversationID, models.SenderUser, req.Message, time.Now()); err != nil {
		log.WithError(err).Warn("failed to persist user turn", nil)
	}

	response := h.responder.Respond(ctx, req.UserID, conversationID, req.Message)

	if err := h.conversations.Append(ctx, req.UserID, conversationID, models.SenderBot, response, time.Now()); err != nil {
		log.WithError(err).Warn("failed to persist bot turn", nil)
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:       response,
		ConversationID: conversationID,
	})
}

// Conversation handles GET /api/conversations/:user_id/:conversation_id.
func (h *Handler) Conversation(c *gin.Context) {
	userID := c.Param("user_id")
	conversationID := c.Param("conversation_id")

	turns, err := h.conversations.Fetch(c.Request.Context(), userID, conversationID)
	if err != nil {
		h.logger.WithError(err).Error("conversation fetch failed", map[string]interface{}{
			"userId":         userID,
			"conversationId": conversationID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation fetch failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"conversation_id": conversationID,
		"turns":           turns,
	})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
