// internal/chat/renderer/renderer.go
package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopassist/internal/common/logger"
	"shopassist/internal/llm"
	"shopassist/internal/models"
)

const summarizeInstruction = "You are ShopAssist's AI customer service assistant. " +
	"Given the following database information, explain it to the user in a friendly, clear, and helpful way. " +
	"Do not show raw JSON or technical details. Use natural language and only the relevant facts."

// Summarizer turns a raw lookup result into conversational text through the
// generative model. The deterministic alternative is RenderTemplate.
type Summarizer struct {
	model  llm.Invoker
	logger logger.Logger
}

func NewSummarizer(model llm.Invoker, log logger.Logger) *Summarizer {
	return &Summarizer{
		model:  model,
		logger: log.WithFields(map[string]interface{}{"component": "renderer"}),
	}
}

// Summarize composes the summarization prompt from history and the raw result
// and returns the model's text verbatim.
func (s *Summarizer) Summarize(ctx context.Context, history []models.Turn, result models.LookupResult) (string, error) {
	raw, err := json.Marshal(result.Data)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", result.Data))
	}

	var b strings.Builder
	b.WriteString(summarizeInstruction)
	b.WriteString("\nConversation so far:\n")
	b.WriteString(flattenHistory(history))
	fmt.Fprintf(&b, "\nDatabase info: %s\n", raw)
	b.WriteString("User: Please explain the above info.")
	prompt := b.String()

	s.logger.Debug("summarization prompt built", map[string]interface{}{
		"promptLength": len(prompt),
	})

	return s.model.Invoke(ctx, prompt)
}

func flattenHistory(history []models.Turn) string {
	var b strings.Builder
	for _, turn := range history {
		sender := "User"
		if turn.Sender == models.SenderBot {
			sender = "Bot"
		}
		fmt.Fprintf(&b, "%s: %s\n", sender, turn.Text)
	}
	return b.String()
}
