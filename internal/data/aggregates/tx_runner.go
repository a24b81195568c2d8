package aggregates

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

// TxRunner owns the transaction boundary of one aggregate write attempt.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner runs fn in a GORM transaction wrapped in an "aggregate.tx"
// span. fn returning an error rolls the transaction back.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	ctx, span := observability.Tracer().Start(ctx, "aggregate.tx", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domainagg.CodeOf(MapError("aggregate.tx", err))))
	}
	return err
}
