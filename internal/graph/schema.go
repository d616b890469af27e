package graph

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/hitoshi/bookreview/internal/model"
)

//go:embed schema.graphql
var schemaSDL string

// msgInternal はオペレーション外のpanicに対するメッセージ。
const msgInternal = "Internal server error"

// maxQueryDepth は関連をたどる入れ子クエリの深さの上限。
const maxQueryDepth = 12

// NewSchema はSDLとリゾルバーからGraphQLスキーマを構築する。
// SDLとリゾルバーのメソッドが一致しない場合はエラーを返す。
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{}),
		graphql.PanicHandler(panicHandler{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphql schema: %w", err)
	}
	return schema, nil
}

// NewHandler は POST {query, operationName, variables} を受け付けるHTTPハンドラーを返す。
func NewHandler(schema *graphql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}

// panicLogger はリゾルバー内のpanicをslogに記録する。
type panicLogger struct{}

func (panicLogger) LogPanic(ctx context.Context, value interface{}) {
	slog.ErrorContext(ctx, "graphql resolver panic",
		slog.Any("panic", value),
	)
}

// panicHandler はオペレーションの外で起きたpanicを内部エラーの形で返す。
// panicの値は応答に含めない。
type panicHandler struct{}

func (panicHandler) MakePanicError(_ context.Context, _ interface{}) *gqlerrors.QueryError {
	apiErr := model.NewInternalError(msgInternal, nil)
	return &gqlerrors.QueryError{
		Message:    apiErr.Message,
		Extensions: apiErr.Extensions(),
	}
}
