package aggregates

import (
	"context"
	"strings"
	"time"

	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"gorm.io/gorm"
)

const defaultCASAttempts = 3

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	// CASAttempts bounds how many times a write is rerun after a stale version.
	CASAttempts int
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.CASAttempts <= 0 {
		d.CASAttempts = defaultCASAttempts
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = operationStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// executeWriteCAS reruns the whole transaction while fn loses a version race,
// up to deps.CASAttempts times. The last conflict is returned when attempts run out.
func executeWriteCAS(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	var err error
	for attempt := 1; attempt <= deps.CASAttempts; attempt++ {
		err = executeWrite(ctx, deps, op, fn)
		if err == nil || !domainagg.IsCode(err, domainagg.CodeConflict) {
			return err
		}
		if ctx.Err() != nil {
			return MapError(op, ctx.Err())
		}
		if attempt < deps.CASAttempts {
			deps.Hooks.IncRetry(op)
			deps.Log.Debug("Retrying aggregate write after version conflict", "op", op, "attempt", attempt)
		}
	}
	return err
}

// executeContractWrite picks the retry policy the aggregate's contract declares.
func executeContractWrite(ctx context.Context, deps BaseDeps, c domainagg.Contract, op string, fn func(dbc dbctx.Context) error) error {
	if c.RetriesOnVersionConflict() {
		return executeWriteCAS(ctx, deps, op, fn)
	}
	return executeWrite(ctx, deps, op, fn)
}
