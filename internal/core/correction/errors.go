package correction

import "errors"

var (
	// ErrApproveNotPending は申請中以外の勤怠修正を承認しようとした場合に返却されます。
	ErrApproveNotPending = errors.New("申請中以外の勤怠修正は承認できません")
	// ErrRejectNotPending は申請中以外の勤怠修正を差し戻そうとした場合に返却されます。
	ErrRejectNotPending = errors.New("申請中以外の勤怠修正は差し戻しできません")
	// ErrCancelNotPending は申請中以外の勤怠修正を取り下げようとした場合に返却されます。
	ErrCancelNotPending = errors.New("申請中以外の勤怠修正は取り下げできません")
	// ErrResubmitNotRejected は差し戻し以外の勤怠修正を再申請しようとした場合に返却されます。
	ErrResubmitNotRejected = errors.New("差し戻し以外の勤怠修正は再申請できません")
	// ErrNoRequestedEvent は承認対象の申請イベントが存在しない場合に返却されます。
	ErrNoRequestedEvent = errors.New("申請内容が存在しないため承認できません")
	// ErrInvalidPunchCount は修正内容が1件でない場合に返却されます。
	ErrInvalidPunchCount = errors.New("修正内容は1件のみ指定できます")
	// ErrNoEvents はイベントを1件も持たない勤怠修正を復元しようとした場合に返却されます。
	ErrNoEvents = errors.New("勤怠修正のイベントが存在しません")
	// ErrAlreadyExists は同一ユーザー・同一日の勤怠修正が既に存在する場合に返却されます。
	ErrAlreadyExists = errors.New("指定した日付の勤怠修正は既に存在します")
	// ErrCorrectionNotFound は対象の勤怠修正が存在しない場合に返却されます。
	ErrCorrectionNotFound = errors.New("勤怠修正が見つかりません")
	// ErrInvalidUserID はユーザーIDが不正な場合に返却されます。
	ErrInvalidUserID = errors.New("ユーザーIDが不正です")
	// ErrUnknownPunchType は承認内容に未知の打刻種別が含まれる場合に返却されます。
	ErrUnknownPunchType = errors.New("未知の打刻種別です")
)
