package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/codesheets-backend/internal/data/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// InjectedTxRunner is a test helper for aggregate integration tests.
// It supports rollback/failure injection. When DB is set the body runs inside a
// real transaction that is rolled back on any failure, including FailCommit.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.rollback()
		return failBeforeBody
	}
	if fn == nil {
		r.commit()
		return nil
	}

	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		return failCommit
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.rollback()
		return err
	}
	r.commit()
	return nil
}

func (r *InjectedTxRunner) rollback() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) commit() {
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
}
