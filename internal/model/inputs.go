package model

import "github.com/invopop/jsonschema"

// 各操作の入力レコード。
// jsonschemaタグが入力スキーマの宣言を兼ね、GraphQLの引数構造体としてもそのまま使う。
// omitemptyのないフィールドは必須として扱われる。

// RegisterInput はregisterの入力。
type RegisterInput struct {
	Name     string `json:"name" jsonschema:"minLength=1"`
	Email    string `json:"email" jsonschema:"format=email"`
	Password string `json:"password" jsonschema:"minLength=8"`
}

// LoginInput はloginの入力。
type LoginInput struct {
	Email    string `json:"email" jsonschema:"format=email"`
	Password string `json:"password" jsonschema:"minLength=8"`
}

// IDInput はgetBookおよびdeleteReviewの入力。
type IDInput struct {
	ID int32 `json:"id"`
}

// AddBookInput はaddBookの入力。
type AddBookInput struct {
	Title         string `json:"title" jsonschema:"minLength=1"`
	Author        string `json:"author" jsonschema:"minLength=1"`
	PublishedYear int32  `json:"publishedYear"`
}

// AddReviewInput はaddReviewの入力。
type AddReviewInput struct {
	BookID  int32  `json:"bookId"`
	Rating  int32  `json:"rating" jsonschema:"minimum=1,maximum=5"`
	Comment string `json:"comment" jsonschema:"minLength=1"`
}

// UpdateReviewInput はupdateReviewの入力。
// ratingとcommentのうち少なくとも一方が必要。
type UpdateReviewInput struct {
	ID      int32   `json:"id"`
	Rating  *int32  `json:"rating,omitempty" jsonschema:"minimum=1,maximum=5"`
	Comment *string `json:"comment,omitempty" jsonschema:"minLength=1"`
}

// JSONSchemaExtend はratingとcommentのanyOf制約を追加する。
func (UpdateReviewInput) JSONSchemaExtend(s *jsonschema.Schema) {
	s.AnyOf = []*jsonschema.Schema{
		{Required: []string{"rating"}},
		{Required: []string{"comment"}},
	}
}

// Patch は更新内容をReviewPatchに変換する。
func (in UpdateReviewInput) Patch() ReviewPatch {
	var p ReviewPatch
	if in.Rating != nil {
		r := int(*in.Rating)
		p.Rating = &r
	}
	p.Comment = in.Comment
	return p
}

// BookFilterInput は書籍検索の条件。
type BookFilterInput struct {
	Title  *string `json:"title,omitempty"`
	Author *string `json:"author,omitempty"`
}

// ReviewFilterInput はレビュー一覧の条件。
type ReviewFilterInput struct {
	Rating  *int32  `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// SearchBooksInput はsearchBooksの入力。
type SearchBooksInput struct {
	Filter *BookFilterInput `json:"filter,omitempty"`
	Skip   *int32           `json:"skip,omitempty" jsonschema:"minimum=0"`
	Take   *int32           `json:"take,omitempty" jsonschema:"minimum=0"`
}

// Page はページング指定を返す。
func (in SearchBooksInput) Page() Page {
	return NewPage(in.Skip, in.Take)
}

// GetReviewsInput はgetReviewsの入力。
type GetReviewsInput struct {
	BookID int32              `json:"bookId"`
	Filter *ReviewFilterInput `json:"filter,omitempty"`
	Skip   *int32             `json:"skip,omitempty" jsonschema:"minimum=0"`
	Take   *int32             `json:"take,omitempty" jsonschema:"minimum=0"`
}

// Page はページング指定を返す。
func (in GetReviewsInput) Page() Page {
	return NewPage(in.Skip, in.Take)
}

// PageInput はgetMyReviewsの入力。
type PageInput struct {
	Skip *int32 `json:"skip,omitempty" jsonschema:"minimum=0"`
	Take *int32 `json:"take,omitempty" jsonschema:"minimum=0"`
}

// Page はページング指定を返す。
func (in PageInput) Page() Page {
	return NewPage(in.Skip, in.Take)
}

// NoInput は引数を取らない操作の入力。
type NoInput struct{}
