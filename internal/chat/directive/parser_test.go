package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"shopassist/internal/chat/registry"
	"shopassist/internal/common/logger"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// ==========================
// Well-Formed Directive Tests
// ==========================

func TestParse_WellFormed(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTool   string
		wantParams []string
	}{
		{
			name:       "single argument",
			text:       "TOOL_CALL: query_order_by_id 12345",
			wantTool:   registry.ToolOrderByID,
			wantParams: []string{"12345"},
		},
		{
			name:       "embedded in prose",
			text:       "Sure, let me check that for you.\nTOOL_CALL: query_order_by_id ORD-9981\nOne moment.",
			wantTool:   registry.ToolOrderByID,
			wantParams: []string{"ORD-9981"},
		},
		{
			name:       "product name takes whole remainder",
			text:       "TOOL_CALL: query_product_by_name Nike Air Max",
			wantTool:   registry.ToolProductByName,
			wantParams: []string{"Nike Air Max"},
		},
		{
			name:       "email re-extracted from remainder",
			text:       "TOOL_CALL: query_user_by_email the address is jane@example.com thanks",
			wantTool:   registry.ToolUserByEmail,
			wantParams: []string{"jane@example.com"},
		},
		{
			name:       "two arguments for order items",
			text:       "TOOL_CALL: query_order_items 12345 67890",
			wantTool:   registry.ToolOrderItems,
			wantParams: []string{"12345", "67890"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(createTestLogger(t))

			tool, params, ok := p.Parse(tt.text)

			assert.True(t, ok)
			assert.Equal(t, tt.wantTool, tool)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

// Parsing is idempotent on well-formed input.
func TestParse_Idempotent(t *testing.T) {
	p := New(createTestLogger(t))

	for i := 0; i < 3; i++ {
		tool, params, ok := p.Parse("TOOL_CALL: query_order_by_id 12345")
		assert.True(t, ok)
		assert.Equal(t, registry.ToolOrderByID, tool)
		assert.Equal(t, []string{"12345"}, params)
	}
}

// ==========================
// Malformed Directive Tests
// ==========================

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no marker", "Your order is on its way."},
		{"marker without tool", "TOOL_CALL: "},
		{"tool without arguments", "TOOL_CALL: query_order_by_id"},
		{"email tool without address", "TOOL_CALL: query_user_by_email no address here"},
		{"product name without value", "TOOL_CALL: query_product_by_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(createTestLogger(t))

			tool, params, ok := p.Parse(tt.text)

			assert.False(t, ok)
			assert.Empty(t, tool)
			assert.Empty(t, params)
		})
	}
}

// Wrong argument count for order items is kept; arity is enforced downstream.
func TestParse_OrderItemsWrongArity(t *testing.T) {
	p := New(createTestLogger(t))

	tool, params, ok := p.Parse("TOOL_CALL: query_order_items 12345")

	assert.True(t, ok)
	assert.Equal(t, registry.ToolOrderItems, tool)
	assert.Equal(t, []string{"12345"}, params)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("something TOOL_CALL: query_user_by_id u-100"))
	assert.False(t, Contains("no directive here"))
}
