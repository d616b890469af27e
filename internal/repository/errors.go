package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/samber/oops"
)

// wrapDBError はドライバーのエラーをリポジトリのエラーに変換する。
// 一意制約違反と外部キー違反は番兵エラーに、それ以外は操作名付きのoopsエラーにする。
func wrapDBError(err error, operation string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrReferenceNotFound, pqErr.Constraint)
		}
	}

	return oops.
		In("repository").
		With("operation", operation).
		Wrapf(err, "failed to %s", operation)
}
