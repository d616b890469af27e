package model

// ページングの既定値。引数が省略された場合のみ適用する。
const (
	DefaultSkip = 0
	DefaultTake = 10
	// MaxTake を超えるtakeはMaxTakeに切り詰める
	MaxTake = 100
)

// Page はオフセット型のページング指定を表す。
type Page struct {
	Skip int
	Take int
}

// NewPage は任意指定のskip/takeからPageを生成する。
// 0が明示された場合は既定値で置き換えない。takeはMaxTakeを上限とする。
func NewPage(skip, take *int32) Page {
	p := Page{Skip: DefaultSkip, Take: DefaultTake}
	if skip != nil {
		p.Skip = int(*skip)
	}
	if take != nil {
		p.Take = min(int(*take), MaxTake)
	}
	return p
}
