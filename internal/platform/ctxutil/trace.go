package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the correlation key-value pairs present on ctx:
// trace_id, request_id and user_id, each only when set.
func LogFields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	var out []interface{}
	if td := GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			out = append(out, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			out = append(out, "request_id", td.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		out = append(out, "user_id", rd.UserID.String())
	}
	return out
}
