// internal/chat/dispatcher/dispatcher.go
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopassist/internal/chat/registry"
	stderrors "shopassist/internal/common/errors"
	"shopassist/internal/common/logger"
	"shopassist/internal/common/metrics"
	"shopassist/internal/models"
)

// Outcome classifies a dispatch attempt for logging and metrics.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeUnknownTool   Outcome = "unknown_tool"
	OutcomeInvalidParams Outcome = "invalid_params"
	OutcomeError         Outcome = "error"
	OutcomeEmpty         Outcome = "empty"
)

// Result is the outcome of one dispatch. Message is user-facing and set for
// every non-OK outcome; Data is set only on OK. Err carries the structured
// error for logging and is never shown to the user.
type Result struct {
	Tool    string
	Outcome Outcome
	Message string
	Data    models.LookupResult
	Err     *stderrors.StandardError
}

// Dispatcher validates and executes tool invocations against the registry.
// It never lets a lookup failure escape; every outcome becomes either data
// or a user-facing message.
type Dispatcher struct {
	registry      *registry.Registry
	lookupTimeout time.Duration
	logger        logger.Logger
}

func New(reg *registry.Registry, lookupTimeout time.Duration, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry:      reg,
		lookupTimeout: lookupTimeout,
		logger:        log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, tool string, params []string) Result {
	log := d.logger.WithFields(map[string]interface{}{
		"tool":   tool,
		"params": params,
	})

	spec, ok := d.registry.Resolve(tool)
	if !ok {
		stdErr := stderrors.NewToolNotFoundError(tool)
		log.WithError(stdErr).Warn("dispatch to unknown tool", nil)
		metrics.DispatchAttempts.WithLabelValues(tool, string(OutcomeUnknownTool)).Inc()
		return Result{
			Tool:    tool,
			Outcome: OutcomeUnknownTool,
			Message: fmt.Sprintf("Tool %s not found.", tool),
			Err:     stdErr,
		}
	}

	if len(params) != spec.Arity {
		stdErr := stderrors.NewInvalidParametersError(tool, spec.Arity, len(params))
		log.WithError(stdErr).Warn("dispatch with wrong parameter count", nil)
		metrics.DispatchAttempts.WithLabelValues(tool, string(OutcomeInvalidParams)).Inc()
		return Result{
			Tool:    tool,
			Outcome: OutcomeInvalidParams,
			Message: fmt.Sprintf("Invalid parameters for tool %s: expected %d, got %d.", tool, spec.Arity, len(params)),
			Err:     stdErr,
		}
	}

	if d.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.lookupTimeout)
		defer cancel()
	}

	result, err := spec.Invoke(ctx, params)
	if err != nil {
		stdErr := stderrors.NewLookupExecutionFailedError(tool, err)
		if errors.Is(err, context.DeadlineExceeded) {
			stdErr = stderrors.NewLookupTimeoutError(tool)
		}
		log.WithError(stdErr).Error("tool invocation failed", nil)
		metrics.DispatchAttempts.WithLabelValues(tool, string(OutcomeError)).Inc()
		return Result{
			Tool:    tool,
			Outcome: OutcomeError,
			Message: fmt.Sprintf("Error calling tool %s.", tool),
			Err:     stdErr,
		}
	}

	if result.Empty() {
		log.Info("tool returned no data", nil)
		metrics.DispatchAttempts.WithLabelValues(tool, string(OutcomeEmpty)).Inc()
		return Result{
			Tool:    tool,
			Outcome: OutcomeEmpty,
			Message: "No data found for your query.",
		}
	}

	log.Info("tool invocation succeeded", map[string]interface{}{"rows": result.RowCount})
	metrics.DispatchAttempts.WithLabelValues(tool, string(OutcomeOK)).Inc()
	return Result{
		Tool:    tool,
		Outcome: OutcomeOK,
		Data:    result,
	}
}
