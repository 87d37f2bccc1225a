// internal/chat/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"shopassist/internal/chat/directive"
	"shopassist/internal/chat/dispatcher"
	"shopassist/internal/chat/extractor"
	"shopassist/internal/chat/registry"
	"shopassist/internal/chat/renderer"
	"shopassist/internal/common/logger"
	"shopassist/internal/llm"
	"shopassist/internal/models"
)

const clarificationReply = "Sorry, I could not understand the tool call. Please rephrase your request."

// HistoryProvider fetches prior turns for a conversation. *store.ConversationLog
// satisfies it.
type HistoryProvider interface {
	Fetch(ctx context.Context, userID, conversationID string) ([]models.Turn, error)
}

// Orchestrator is the top-level entry point for a chat message. It tries
// deterministic context extraction first and falls back to the generative
// model, dispatching any directive the model emits.
type Orchestrator struct {
	registry   *registry.Registry
	extractor  *extractor.Extractor
	parser     *directive.Parser
	dispatcher *dispatcher.Dispatcher
	summarizer *renderer.Summarizer
	model      llm.Invoker
	history    HistoryProvider
	systemText string
	logger     logger.Logger
}

func New(
	reg *registry.Registry,
	ext *extractor.Extractor,
	parser *directive.Parser,
	disp *dispatcher.Dispatcher,
	sum *renderer.Summarizer,
	model llm.Invoker,
	history HistoryProvider,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:   reg,
		extractor:  ext,
		parser:     parser,
		dispatcher: disp,
		summarizer: sum,
		model:      model,
		history:    history,
		systemText: buildSystemInstruction(reg),
		logger:     log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

func buildSystemInstruction(reg *registry.Registry) string {
	var b strings.Builder
	b.WriteString("You are ShopAssist's AI customer service assistant for our e-commerce clothing platform.\n\n")
	b.WriteString("ALWAYS analyze the conversation history to find any information the user has already provided. ")
	b.WriteString("NEVER ask for information that is already present in the conversation context.\n\n")
	b.WriteString("When you have enough information to answer a user's request using a database tool, respond IMMEDIATELY with:\n")
	b.WriteString(directive.Marker + " [exact_tool_name] [parameters_separated_by_spaces]\n\n")
	b.WriteString(directive.Marker + " format examples:\n")
	b.WriteString("- " + directive.Marker + " query_order_by_id 12345\n")
	b.WriteString("- " + directive.Marker + " query_product_by_name Nike Air Max\n")
	b.WriteString("- " + directive.Marker + " query_user_by_email john@email.com\n")
	b.WriteString("- " + directive.Marker + " query_order_items 12345 67890\n\n")
	b.WriteString("Available tool names (use these exactly):\n")
	for _, name := range reg.Names() {
		b.WriteString(name + "\n")
	}
	b.WriteString("\nIf you do not have enough information, ask the user for only the missing details. ")
	b.WriteString("If you cannot find specific information, suggest alternative ways the user can get help.\n\n")
	b.WriteString("Be friendly, helpful, and always refer to the company as ShopAssist.")
	return b.String()
}

// Respond produces the bot reply for one user message. Every failure is
// converted to user-facing text here; nothing escapes.
func (o *Orchestrator) Respond(ctx context.Context, userID, conversationID, message string) string {
	log := o.logger.WithFields(map[string]interface{}{
		"userId":         userID,
		"conversationId": conversationID,
	})

	history, err := o.history.Fetch(ctx, userID, conversationID)
	if err != nil {
		// Degrade to a contextless exchange rather than failing the request.
		log.WithError(err).Warn("history fetch failed, continuing without context", nil)
		history = nil
	}

	if candidate, ok := o.extractor.Extract(history, message); ok {
		log.Info("context-aware tool execution", map[string]interface{}{
			"tool":   candidate.Tool,
			"params": candidate.Params,
		})
		return o.dispatch(ctx, log, history, candidate.Tool, candidate.Params)
	}

	prompt := fmt.Sprintf("%s\nConversation so far:\n%sUser: %s",
		o.systemText, flattenHistory(history), message)

	response, err := o.model.Invoke(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("model invocation failed", nil)
		return fmt.Sprintf("Error: %s", err)
	}

	if directive.Contains(response) {
		log.Info("tool directive detected in model response", nil)
		tool, params, ok := o.parser.Parse(response)
		if !ok {
			log.Warn("directive present but unparsable", map[string]interface{}{
				"response": response,
			})
			return clarificationReply
		}
		return o.dispatch(ctx, log, history, tool, params)
	}

	return response
}

func (o *Orchestrator) dispatch(ctx context.Context, log logger.Logger, history []models.Turn, tool string, params []string) string {
	result := o.dispatcher.Dispatch(ctx, tool, params)
	if result.Outcome != dispatcher.OutcomeOK {
		return result.Message
	}

	summary, err := o.summarizer.Summarize(ctx, history, result.Data)
	if err != nil {
		// Deterministic template rendering as the degraded path.
		log.WithError(err).Warn("summarization failed, using template rendering", map[string]interface{}{
			"tool": tool,
		})
		return renderer.RenderTemplate(tool, result.Data, params)
	}
	return summary
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
