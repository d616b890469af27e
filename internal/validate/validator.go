// Package validate は操作ごとに宣言した入力スキーマによる検証を提供する。
//
// スキーマはmodelパッケージの入力レコードのstructタグから生成したJSON Schemaで、
// 起動時に1回だけコンパイルする。検証は認可や副作用のある処理より前に行い、
// 最初の違反をBAD_USER_INPUTとして返す。
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hitoshi/bookreview/internal/model"
)

// 操作名
const (
	OpRegister     = "register"
	OpLogin        = "login"
	OpGetBook      = "getBook"
	OpSearchBooks  = "searchBooks"
	OpGetReviews   = "getReviews"
	OpGetMyReviews = "getMyReviews"
	OpAddBook      = "addBook"
	OpAddReview    = "addReview"
	OpUpdateReview = "updateReview"
	OpDeleteReview = "deleteReview"
)

// MsgUpdateReviewEmpty はupdateReviewで更新項目が1つもない場合のメッセージ。
const MsgUpdateReviewEmpty = "at least one of rating or comment must be provided"

// Operation は1つの操作の入力スキーマ宣言。
type Operation struct {
	Name string
	// Input はスキーマの元になる入力レコードのゼロ値。
	Input any
	// AnyOfMessage はanyOf制約に違反した場合に使うメッセージ。
	AnyOfMessage string
}

// Operations はAPIの全操作のスキーマ宣言を返す。
func Operations() []Operation {
	return []Operation{
		{Name: OpRegister, Input: model.RegisterInput{}},
		{Name: OpLogin, Input: model.LoginInput{}},
		{Name: OpGetBook, Input: model.IDInput{}},
		{Name: OpSearchBooks, Input: model.SearchBooksInput{}},
		{Name: OpGetReviews, Input: model.GetReviewsInput{}},
		{Name: OpGetMyReviews, Input: model.PageInput{}},
		{Name: OpAddBook, Input: model.AddBookInput{}},
		{Name: OpAddReview, Input: model.AddReviewInput{}},
		{Name: OpUpdateReview, Input: model.UpdateReviewInput{}, AnyOfMessage: MsgUpdateReviewEmpty},
		{Name: OpDeleteReview, Input: model.IDInput{}},
	}
}

type compiled struct {
	schema       *jschema.Schema
	anyOfMessage string
}

// Validator はコンパイル済みのスキーマを保持する。
// 生成後は読み取りのみのため、リクエスト間で共有してよい。
type Validator struct {
	schemas map[string]compiled
}

// New は指定した操作のスキーマをコンパイルしてValidatorを生成する。
func New(ops ...Operation) (*Validator, error) {
	v := &Validator{schemas: make(map[string]compiled, len(ops))}
	reflector := jsonschema.Reflector{DoNotReference: true}

	for _, op := range ops {
		data, err := json.Marshal(reflector.Reflect(op.Input))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema for %s: %w", op.Name, err)
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema for %s: %w", op.Name, err)
		}

		c := jschema.NewCompiler()
		c.AssertFormat()
		url := op.Name + ".json"
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("failed to add schema resource for %s: %w", op.Name, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", op.Name, err)
		}

		v.schemas[op.Name] = compiled{schema: sch, anyOfMessage: op.AnyOfMessage}
	}
	return v, nil
}

// NewDefault はAPIの全操作を登録したValidatorを生成する。
func NewDefault() (*Validator, error) {
	return New(Operations()...)
}

// Validate は入力を操作のスキーマで検証する。
// 違反があればBAD_USER_INPUTのAPIErrorを返す。
func (v *Validator) Validate(op string, in any) error {
	c, ok := v.schemas[op]
	if !ok {
		return fmt.Errorf("no input schema registered for operation %q", op)
	}

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s input: %w", op, err)
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode %s input: %w", op, err)
	}

	if err := c.schema.Validate(inst); err != nil {
		var ve *jschema.ValidationError
		if errors.As(err, &ve) {
			return model.NewBadUserInputError(describe(ve, c.anyOfMessage))
		}
		return model.NewBadUserInputError(err.Error())
	}
	return nil
}

// Guard はnextの前に入力検証を行うリゾルバーを返す。
// 検証に失敗した場合はnextを呼ばない。
func Guard[In, Out any](
	v *Validator,
	op string,
	next func(ctx context.Context, in In) (Out, error),
) func(ctx context.Context, in In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		if err := v.Validate(op, in); err != nil {
			var zero Out
			return zero, err
		}
		return next(ctx, in)
	}
}

// describe は検証エラーの木から最初の違反を人が読める文にする。
func describe(ve *jschema.ValidationError, anyOfMessage string) string {
	node := ve
	for {
		if anyOfMessage != "" && isAnyOf(node) {
			return anyOfMessage
		}
		if len(node.Causes) == 0 {
			break
		}
		node = node.Causes[0]
	}

	// message.Printerは呼び出しごとに生成する
	msg := node.ErrorKind.LocalizedString(message.NewPrinter(language.English))
	if len(node.InstanceLocation) == 0 {
		return msg
	}
	return fmt.Sprintf("%q %s", strings.Join(node.InstanceLocation, "."), msg)
}

func isAnyOf(ve *jschema.ValidationError) bool {
	if ve.ErrorKind == nil {
		return false
	}
	path := ve.ErrorKind.KeywordPath()
	return len(path) > 0 && path[len(path)-1] == "anyOf"
}
