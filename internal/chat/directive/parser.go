// internal/chat/directive/parser.go
package directive

import (
	"regexp"
	"strings"

	"shopassist/internal/chat/registry"
	"shopassist/internal/common/logger"
)

// Marker is the literal token the model emits to request a tool call. It is
// a wire contract with the system prompt; change both together or neither.
const Marker = "TOOL_CALL:"

var (
	reDirective = regexp.MustCompile(`TOOL_CALL:\s*(\w+)(?:\s+(.+))?`)
	reEmail     = regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

// Contains reports whether text carries the directive marker at all. The
// orchestrator uses this to decide between parsing and returning the model
// text verbatim.
func Contains(text string) bool {
	return strings.Contains(text, Marker)
}

// Parser extracts a tool invocation from model-generated free text.
type Parser struct {
	logger logger.Logger
}

func New(log logger.Logger) *Parser {
	return &Parser{
		logger: log.WithFields(map[string]interface{}{"component": "directive-parser"}),
	}
}

// Parse pulls the first directive out of text. Returns ok=false when the
// marker is absent or the directive is unparsable; parse failure is a normal
// outcome, not an error.
//
// Argument handling is per tool: email tools re-extract the address from the
// remainder, free-text tools take the whole remainder as one parameter, and
// everything else splits on whitespace.
func (p *Parser) Parse(text string) (string, []string, bool) {
	m := reDirective.FindStringSubmatch(text)
	if m == nil {
		if Contains(text) {
			p.logger.Warn("directive marker present but unparsable", map[string]interface{}{
				"text": text,
			})
		}
		return "", nil, false
	}

	tool := m[1]
	remainder := strings.TrimSpace(m[2])

	switch tool {
	case registry.ToolUserByEmail:
		if email := reEmail.FindString(remainder); email != "" {
			return tool, []string{email}, true
		}
		p.logger.Warn("email directive without a valid address", map[string]interface{}{
			"remainder": remainder,
		})
		return "", nil, false

	case registry.ToolProductByName:
		if remainder == "" {
			p.logger.Warn("product name directive without a name", nil)
			return "", nil, false
		}
		return tool, []string{remainder}, true

	case registry.ToolOrderItems:
		params := strings.Fields(remainder)
		if len(params) != 2 {
			// Keep whatever was split; the dispatcher rejects on arity.
			p.logger.Warn("order items directive expects 2 arguments", map[string]interface{}{
				"got": len(params),
			})
		}
		return tool, params, true

	default:
		params := strings.Fields(remainder)
		if len(params) == 0 {
			p.logger.Warn("directive without arguments", map[string]interface{}{
				"tool": tool,
			})
			return "", nil, false
		}
		return tool, params, true
	}
}
