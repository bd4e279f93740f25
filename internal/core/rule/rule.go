package rule

import (
	"kintai/internal/core/identity"
	"kintai/internal/core/punch"
)

// TargetAction はルールが対象とする打刻アクションです。
type TargetAction string

const (
	TargetClockIn    TargetAction = "CLOCK_IN"
	TargetClockOut   TargetAction = "CLOCK_OUT"
	TargetBreakStart TargetAction = "BREAK_START"
	TargetBreakEnd   TargetAction = "BREAK_END"
)

// IsValidTargetAction は既知の対象アクションかどうかを返します。
func IsValidTargetAction(a TargetAction) bool {
	switch a {
	case TargetClockIn, TargetClockOut, TargetBreakStart, TargetBreakEnd:
		return true
	default:
		return false
	}
}

// TargetActionForPunch は打刻種別に対応する対象アクションを返します。
func TargetActionForPunch(t punch.Type) TargetAction {
	return TargetAction(t)
}

// Type はルールの種別名です。
type Type string

const (
	// TypeAllowClockInOnlyBeforeTime は「何時までに出勤打刻できるか」のルールです。
	TypeAllowClockInOnlyBeforeTime Type = "ALLOW_CLOCK_IN_ONLY_BEFORE_TIME"
	// TypeAllowClockOutOnlyAfterTime は「何時から退勤打刻できるか」のルールです。
	TypeAllowClockOutOnlyAfterTime Type = "ALLOW_CLOCK_OUT_ONLY_AFTER_TIME"
)

// Setting はルール種別ごとの具体的な設定値です。
// type で分岐できる直和型として表現し、種別の追加時は変種を増やします。
type Setting interface {
	SettingType() Type
	sealed()
}

// AllowClockInOnlyBeforeTime は latestClockInTime 以前のみ出勤打刻を許可します。
type AllowClockInOnlyBeforeTime struct {
	LatestClockInTime TimeOfDay
}

func (AllowClockInOnlyBeforeTime) SettingType() Type { return TypeAllowClockInOnlyBeforeTime }
func (AllowClockInOnlyBeforeTime) sealed()           {}

// AllowClockOutOnlyAfterTime は earliestClockOutTime 以降のみ退勤打刻を許可します。
type AllowClockOutOnlyAfterTime struct {
	EarliestClockOutTime TimeOfDay
}

func (AllowClockOutOnlyAfterTime) SettingType() Type { return TypeAllowClockOutOnlyAfterTime }
func (AllowClockOutOnlyAfterTime) sealed()           {}

// Rule は打刻を時間帯で制約する勤怠ルール集約です。
// Rule 自体は type と setting の整合といった単体の不変条件のみを保証し、
// occurredAt を使った可否判定はルール集合を扱う Policy 側で行います。
type Rule struct {
	id       identity.EntityID
	targets  []TargetAction
	ruleType Type
	setting  Setting
	enabled  bool
}

// New は新しい勤怠ルールを生成します。
func New(targets []TargetAction, ruleType Type, setting Setting, enabled bool) (*Rule, error) {
	return newRule(identity.Generate(), targets, ruleType, setting, enabled)
}

// Reconstruct は永続化された状態から勤怠ルールを復元します。
func Reconstruct(id identity.EntityID, targets []TargetAction, ruleType Type, setting Setting, enabled bool) (*Rule, error) {
	return newRule(id, targets, ruleType, setting, enabled)
}

func newRule(id identity.EntityID, targets []TargetAction, ruleType Type, setting Setting, enabled bool) (*Rule, error) {
	if setting == nil || ruleType != setting.SettingType() {
		return nil, ErrTypeSettingMismatch
	}
	return &Rule{
		id:       id,
		targets:  targets,
		ruleType: ruleType,
		setting:  setting,
		enabled:  enabled,
	}, nil
}

// ID はルールIDを返します。
func (r *Rule) ID() identity.EntityID {
	return r.id
}

// Targets は対象アクションを返します。
func (r *Rule) Targets() []TargetAction {
	return r.targets
}

// Type はルール種別を返します。
func (r *Rule) Type() Type {
	return r.ruleType
}

// Setting はルール設定を返します。
func (r *Rule) Setting() Setting {
	return r.setting
}

// Enabled はルールが有効かどうかを返します。
func (r *Rule) Enabled() bool {
	return r.enabled
}

func (r *Rule) appliesTo(action TargetAction) bool {
	if !r.enabled {
		return false
	}
	for _, t := range r.targets {
		if t == action {
			return true
		}
	}
	return false
}
