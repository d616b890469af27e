package graph

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hitoshi/bookreview/internal/auth"
	"github.com/hitoshi/bookreview/internal/metrics"
	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/token"
	"github.com/hitoshi/bookreview/internal/validate"
)

const tracerName = "bookreview/graph"

// resolverFunc はパイプラインの各段が受け渡すリゾルバー本体。
type resolverFunc[In, Out any] = func(ctx context.Context, in In) (Out, error)

// pipeline はリゾルバー本体に入力検証・認可・エラー正規化を合成する。
// 合成順は外側から normalize → validate → requireAuth → body。
type pipeline struct {
	validator  *validate.Validator
	authn      auth.Identifier
	metrics    metrics.MetricsCollector
	tracer     trace.Tracer
	production bool
}

func newPipeline(v *validate.Validator, authn auth.Identifier, m metrics.MetricsCollector, production bool) *pipeline {
	if m == nil {
		m = metrics.Nop{}
	}
	return &pipeline{
		validator:  v,
		authn:      authn,
		metrics:    m,
		tracer:     otel.Tracer(tracerName),
		production: production,
	}
}

// public は入力検証のみを行うオペレーションを合成する。
func public[In, Out any](p *pipeline, op string, body resolverFunc[In, Out]) resolverFunc[In, Out] {
	return normalized(p, op, validate.Guard(p.validator, op, body))
}

// protected は入力検証の後に指定種別のトークンで認可するオペレーションを合成する。
func protected[In, Out any](p *pipeline, op string, kind token.Kind, body resolverFunc[In, Out]) resolverFunc[In, Out] {
	return normalized(p, op, validate.Guard(p.validator, op, auth.RequireAuth(p.authn, kind, body)))
}

// authorized は入力を持たず認可のみを行うオペレーションを合成する。
func authorized[In, Out any](p *pipeline, op string, kind token.Kind, body resolverFunc[In, Out]) resolverFunc[In, Out] {
	return normalized(p, op, auth.RequireAuth(p.authn, kind, body))
}

// checkedAs はschemaOpのスキーマで入力を検証する関連リゾルバーを合成する。
func checkedAs[In, Out any](p *pipeline, op, schemaOp string, body resolverFunc[In, Out]) resolverFunc[In, Out] {
	return normalized(p, op, validate.Guard(p.validator, schemaOp, body))
}

// normalized はエラー正規化の境界。
// トレーススパンとメトリクスもここで記録する。
func normalized[In, Out any](p *pipeline, op string, next resolverFunc[In, Out]) resolverFunc[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		ctx, span := p.tracer.Start(ctx, "graphql."+op,
			trace.WithAttributes(attribute.String("graphql.operation", op)),
		)
		defer span.End()

		start := time.Now()
		out, err := call(ctx, next, in)
		if err == nil {
			p.metrics.RecordOperation(op, metrics.CodeOK, time.Since(start))
			return out, nil
		}

		apiErr := p.normalize(ctx, op, err)
		p.metrics.RecordOperation(op, apiErr.Code, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, apiErr.Code)

		var zero Out
		return zero, apiErr
	}
}

// call はnextを実行し、panicはエラーとして返す。
func call[In, Out any](ctx context.Context, next resolverFunc[In, Out], in In) (out Out, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = oops.In("graph").With("panic", fmt.Sprint(v)).Errorf("panic: %v", v)
		}
	}()
	return next(ctx, in)
}

// normalize はエラーをAPIErrorに変換する。
// 型付きのエラーはコードとメッセージを保ち、それ以外は "Failed to <op>" の内部エラーにして詳細をログにのみ残す。
// 本番モード以外ではスタックトレースを付与する。
func (p *pipeline) normalize(ctx context.Context, op string, err error) *model.APIError {
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		attrs := []any{
			slog.String("operation", op),
			slog.String("error", err.Error()),
		}
		if o, isOops := oops.AsOops(err); isOops {
			attrs = append(attrs,
				slog.String("domain", o.Domain()),
				slog.Any("context", o.Context()),
			)
		}
		slog.ErrorContext(ctx, "オペレーションの実行に失敗しました", attrs...)
		apiErr = model.NewInternalError("Failed to "+op, err)
	}

	if p.production {
		return apiErr
	}
	return apiErr.WithStack(stackOf(err))
}

// stackOf はoopsエラーであれば発生箇所のスタックを、そうでなければ現在のスタックを返す。
func stackOf(err error) string {
	if o, ok := oops.AsOops(err); ok {
		if st := o.Stacktrace(); st != "" {
			return st
		}
	}
	return string(debug.Stack())
}
