// internal/chat/extractor/extractor.go
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"shopassist/internal/chat/registry"
	"shopassist/internal/common/logger"
	"shopassist/internal/models"
)

// Candidate is a proposed tool invocation inferred from conversation context.
type Candidate struct {
	Tool   string
	Params []string
}

var (
	reOrderID     = regexp.MustCompile(`(?i)order[\s\w]*id[\s:]*([A-Za-z0-9-]{3,})\b`)
	reProductName = regexp.MustCompile(`(?i)product[\s\w]*name[\s:]*['"]?([^'"` + "\n" + `]{3,})['"]?`)
	reEmail       = regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	reUserID      = regexp.MustCompile(`(?i)user[\s\w]*id[\s:]*([A-Za-z0-9-]{3,})\b`)
	reProductID   = regexp.MustCompile(`(?i)product[\s_]?id[\s:]*([A-Za-z0-9-]{3,})\b`)
	reDCID        = regexp.MustCompile(`(?i)distribution[\s\w]*center[\s\w]*id[\s:]*([A-Za-z0-9-]{3,})\b`)
)

// Stop-word guards reject degenerate captures like "is" or "the" that the
// loose patterns would otherwise accept.
var (
	orderIDStopWords   = stopSet("is", "it", "the", "a", "an", "status", "order", "id")
	productStopWords   = stopSet("is", "it", "the", "a", "an", "name", "product")
	userIDStopWords    = stopSet("is", "it", "the", "a", "an", "status", "order", "id", "user")
	productIDStopWords = stopSet("is", "it", "the", "a", "an", "id", "product")
	dcIDStopWords      = stopSet("is", "it", "the", "a", "an", "id", "center", "distribution")
)

func stopSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Extractor infers user intent deterministically from message plus history,
// bypassing the generative model when a rule matches.
type Extractor struct {
	logger logger.Logger
}

func New(log logger.Logger) *Extractor {
	return &Extractor{
		logger: log.WithFields(map[string]interface{}{"component": "extractor"}),
	}
}

// FlattenContext renders history plus the current message as one text block,
// oldest turn first, matching the prompt layout the model sees.
func FlattenContext(history []models.Turn, message string) string {
	var b strings.Builder
	for _, turn := range history {
		b.WriteString(titleSender(turn.Sender))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User: %s\n", message)
	return b.String()
}

func titleSender(s models.Sender) string {
	switch s {
	case models.SenderBot:
		return "Bot"
	default:
		return "User"
	}
}

// Extract runs the ordered entity rules over history plus current message.
// First rule to produce a valid capture wins; later rules are not evaluated.
// Returns false when no rule produces a candidate. Never fabricates a
// parameter: a failed capture means no candidate, not an empty string.
func (e *Extractor) Extract(history []models.Turn, message string) (Candidate, bool) {
	context := FlattenContext(history, message)

	// 1. Order ID
	if orderID, ok := capture(reOrderID, context, orderIDStopWords); ok {
		e.logger.Info("order id found in context", map[string]interface{}{"orderId": orderID})
		return Candidate{Tool: registry.ToolOrderByID, Params: []string{orderID}}, true
	}

	// 2. Product name
	if name, ok := capture(reProductName, context, productStopWords); ok {
		e.logger.Info("product name found in context", map[string]interface{}{"productName": name})
		return Candidate{Tool: registry.ToolProductByName, Params: []string{name}}, true
	}

	// 3. Email
	if m := reEmail.FindStringSubmatch(context); m != nil {
		e.logger.Info("email found in context", map[string]interface{}{"email": m[1]})
		return Candidate{Tool: registry.ToolUserByEmail, Params: []string{m[1]}}, true
	}

	// 4. Order items: order id AND user id both present. Rule 1 returns
	// before this runs when an order id matches alone; single-field intents
	// take priority by design.
	orderID, okOrder := capture(reOrderID, context, orderIDStopWords)
	userID, okUser := capture(reUserID, context, userIDStopWords)
	if okOrder && okUser {
		e.logger.Info("order items context found", map[string]interface{}{
			"orderId": orderID,
			"userId":  userID,
		})
		return Candidate{Tool: registry.ToolOrderItems, Params: []string{orderID, userID}}, true
	}

	// 5. Inventory by product id, only near inventory/stock wording
	if mentionsInventory(context) {
		if productID, ok := capture(reProductID, context, productIDStopWords); ok {
			e.logger.Info("product id for inventory found in context", map[string]interface{}{"productId": productID})
			return Candidate{Tool: registry.ToolInventoryByProductID, Params: []string{productID}}, true
		}
	}

	// 6. Distribution center id
	if dcID, ok := capture(reDCID, context, dcIDStopWords); ok {
		e.logger.Info("distribution center id found in context", map[string]interface{}{"dcId": dcID})
		return Candidate{Tool: registry.ToolDistributionCenter, Params: []string{dcID}}, true
	}

	return Candidate{}, false
}

// capture applies a rule pattern and its stop-word guard. The pattern already
// enforces the minimum capture length.
func capture(re *regexp.Regexp, text string, stopWords map[string]struct{}) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	token := strings.TrimSpace(m[1])
	if len(token) < 3 {
		return "", false
	}
	if _, stopped := stopWords[strings.ToLower(token)]; stopped {
		return "", false
	}
	return token, true
}

func mentionsInventory(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "inventory") || strings.Contains(lower, "stock")
}
