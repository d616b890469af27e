package model

import "time"

// Book は書籍を表す。
type Book struct {
	ID            int64
	Title         string
	Author        string
	PublishedYear int
	CreatedAt     time.Time
}

// Review は書籍に対するユーザーのレビューを表す。
// (UserID, BookID) の組み合わせごとに最大1件。
type Review struct {
	ID        int64
	Rating    int
	Comment   string
	BookID    int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewPatch はレビューの部分更新内容を表す。
// nilのフィールドは更新しない。
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

// IsEmpty は更新対象のフィールドが1つもない場合にtrueを返す。
func (p ReviewPatch) IsEmpty() bool {
	return p.Rating == nil && p.Comment == nil
}
