package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound は対象日の勤怠記録が存在しない場合に返却されます。
	ErrRecordNotFound = errors.New("勤怠記録が見つかりません")
	// ErrInvalidUserID はユーザーIDが不正な場合に返却されます。
	ErrInvalidUserID = errors.New("ユーザーIDが不正です")
	// ErrDuplicateRecord は同一ユーザー・同一日の勤怠記録が既に存在する場合に返却されます。
	ErrDuplicateRecord = errors.New("勤怠記録が既に存在します")
)

// InvalidStateError は現在の勤務状態では許可されない打刻操作を表します。
type InvalidStateError struct {
	Operation     string
	CurrentStatus Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%sができません。現在のステータス: %s", e.Operation, e.CurrentStatus)
}
