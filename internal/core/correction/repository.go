package correction

import (
	"context"
	"time"

	"kintai/internal/core/identity"
)

// Repository は勤怠修正永続化の抽象です。
// 修正が存在しない場合はエラーではなく nil を返し、
// 呼び出し元のユースケースが not-found への変換を行います。
type Repository interface {
	FindByUserIDAndWorkDate(ctx context.Context, userID identity.EntityID, workDate time.Time) (*Correction, error)
	// Save は未永続（CreatedAt を持たない）イベントのみを保存します。
	// 保存済みイベントの再保存は no-op でなければなりません。
	Save(ctx context.Context, correction *Correction) error
}
