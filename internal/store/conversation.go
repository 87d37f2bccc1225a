// internal/store/conversation.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopassist/internal/common/logger"
	"shopassist/internal/models"
)

var ErrConversationStoreFailed = errors.New("CONVERSATION_STORE_FAILED")

// ConversationLog is the append-only per-user, per-conversation record of
// prior turns, kept in Redis as a list of JSON-encoded turns.
type ConversationLog struct {
	client       *redis.Client
	historyLimit int
	logger       logger.Logger
}

func NewConversationLog(client *redis.Client, historyLimit int, log logger.Logger) *ConversationLog {
	return &ConversationLog{
		client:       client,
		historyLimit: historyLimit,
		logger:       log.WithFields(map[string]interface{}{"component": "conversation-log"}),
	}
}

func conversationKey(userID, conversationID string) string {
	return fmt.Sprintf("chat:%s:%s", userID, conversationID)
}

// Append adds one turn to the end of the conversation.
func (l *ConversationLog) Append(ctx context.Context, userID, conversationID string, sender models.Sender, text string, ts time.Time) error {
	turn := models.Turn{
		Sender:    sender,
		Text:      text,
		Timestamp: ts.UTC(),
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("%w: marshal turn: %v", ErrConversationStoreFailed, err)
	}

	if err := l.client.RPush(ctx, conversationKey(userID, conversationID), data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConversationStoreFailed, err)
	}
	return nil
}

// Fetch returns the most recent turns, oldest first, capped at the configured
// history limit. A missing conversation yields an empty slice, not an error.
func (l *ConversationLog) Fetch(ctx context.Context, userID, conversationID string) ([]models.Turn, error) {
	start := int64(-l.historyLimit)
	if l.historyLimit <= 0 {
		start = 0
	}

	entries, err := l.client.LRange(ctx, conversationKey(userID, conversationID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversationStoreFailed, err)
	}

	turns := make([]models.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn models.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			// Skip corrupt entries rather than failing the whole fetch.
			l.logger.Warn("skipping unreadable conversation turn", map[string]interface{}{
				"userId":         userID,
				"conversationId": conversationID,
				"error":          err.Error(),
			})
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
