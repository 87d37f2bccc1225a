package dispatcher

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"shopassist/internal/chat/registry"
	stderrors "shopassist/internal/common/errors"
	"shopassist/internal/common/logger"
	"shopassist/internal/models"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func buildTestRegistry(t *testing.T, invoke registry.LookupFunc) *registry.Registry {
	t.Helper()

	reg := registry.New()
	err := reg.Register(&registry.Spec{
		Name:        registry.ToolOrderByID,
		Description: "Query order details by order ID",
		Pattern:     regexp.MustCompile(`order`),
		Arity:       1,
		Invoke:      invoke,
	})
	assert.NoError(t, err)
	return reg
}

// ==========================
// Dispatch Outcome Tests
// ==========================

func TestDispatch_Success(t *testing.T) {
	want := models.LookupResult{
		Data:     models.Record{"order_id": "12345", "status": "Shipped"},
		RowCount: 1,
	}
	reg := buildTestRegistry(t, func(ctx context.Context, params []string) (models.LookupResult, error) {
		assert.Equal(t, []string{"12345"}, params)
		return want, nil
	})

	d := New(reg, 5*time.Second, createTestLogger(t))
	result := d.Dispatch(context.Background(), registry.ToolOrderByID, []string{"12345"})

	assert.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, want, result.Data)
	assert.Empty(t, result.Message)
}

func TestDispatch_UnknownTool(t *testing.T) {
	reg := buildTestRegistry(t, func(ctx context.Context, params []string) (models.LookupResult, error) {
		t.Fatal("lookup must not be invoked for an unknown tool")
		return models.LookupResult{}, nil
	})

	d := New(reg, 5*time.Second, createTestLogger(t))
	result := d.Dispatch(context.Background(), "query_nonexistent", []string{"x"})

	assert.Equal(t, OutcomeUnknownTool, result.Outcome)
	assert.Contains(t, result.Message, "query_nonexistent")
	assert.Contains(t, result.Message, "not found")
	assert.Equal(t, stderrors.ErrCodeToolNotFound, result.Err.Code)
}

func TestDispatch_ArityMismatch(t *testing.T) {
	reg := buildTestRegistry(t, func(ctx context.Context, params []string) (models.LookupResult, error) {
		t.Fatal("lookup must not be invoked on arity mismatch")
		return models.LookupResult{}, nil
	})

	d := New(reg, 5*time.Second, createTestLogger(t))
	result := d.Dispatch(context.Background(), registry.ToolOrderByID, []string{"a", "b"})

	assert.Equal(t, OutcomeInvalidParams, result.Outcome)
	assert.Contains(t, result.Message, "Invalid parameters")
	assert.Equal(t, stderrors.ErrCodeInvalidParameters, result.Err.Code)
}

func TestDispatch_LookupError(t *testing.T) {
	reg := buildTestRegistry(t, func(ctx context.Context, params []string) (models.LookupResult, error) {
		return models.LookupResult{}, errors.New("connection refused")
	})

	d := New(reg, 5*time.Second, createTestLogger(t))
	result := d.Dispatch(context.Background(), registry.ToolOrderByID, []string{"12345"})

	assert.Equal(t, OutcomeError, result.Outcome)
	assert.Contains(t, result.Message, "Error calling tool")
	// Internal error details never reach the user.
	assert.NotContains(t, result.Message, "connection refused")
}

func TestDispatch_EmptyResult(t *testing.T) {
	reg := buildTestRegistry(t, func(ctx context.Context, params []string) (models.LookupResult, error) {
		return models.LookupResult{}, nil
	})

	d := New(reg, 5*time.Second, createTestLogger(t))
	result := d.Dispatch(context.Background(), registry.ToolOrderByID, []string{"99999"})

	assert.Equal(t, OutcomeEmpty, result.Outcome)
	assert.Contains(t, result.Message, "No data found")
}

func TestDispatch_AppliesLookupTimeout(t *testing.T) {
	reg := buildTestRegistry(t, func(ctx context.Context, params []string) (models.LookupResult, error) {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
		return models.LookupResult{Data: models.Record{"order_id": "1"}, RowCount: 1}, nil
	})

	d := New(reg, time.Second, createTestLogger(t))
	result := d.Dispatch(context.Background(), registry.ToolOrderByID, []string{"12345"})

	assert.Equal(t, OutcomeOK, result.Outcome)
}
