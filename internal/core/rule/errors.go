package rule

import "errors"

var (
	// ErrTypeSettingMismatch は type と setting の種別が一致しない場合に返却されます。
	ErrTypeSettingMismatch = errors.New("勤怠ルール定義が不正です（typeとsetting.typeが一致しません）")
	// ErrRuleNotFound は指定された勤怠ルールが存在しない場合に返却されます。
	ErrRuleNotFound = errors.New("勤怠ルールが見つかりません")
	// ErrInvalidRuleID はルールIDが不正な場合に返却されます。
	ErrInvalidRuleID = errors.New("勤怠ルールIDが不正です")
	// ErrInvalidTargetAction は対象アクションが不正な場合に返却されます。
	ErrInvalidTargetAction = errors.New("勤怠ルールの対象アクションが不正です")
	// ErrInvalidRuleType はルール種別が不正な場合に返却されます。
	ErrInvalidRuleType = errors.New("勤怠ルールの種別が不正です")
)
