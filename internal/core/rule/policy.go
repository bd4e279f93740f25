package rule

import (
	"fmt"
	"time"
)

// Policy はルール集合に対して打刻時刻の可否を判定するステートレスな評価器です。
// 「二重打刻」のような打刻順序の正しさは AttendanceRecord 側が担保するため、
// ここでは時刻制約のみを見ます。
type Policy struct{}

// ClockInWindowError は出勤打刻がルールの許可時刻を過ぎている場合のエラーです。
type ClockInWindowError struct {
	LatestClockInTime TimeOfDay
}

func (e *ClockInWindowError) Error() string {
	return fmt.Sprintf("出勤打刻は%sまでです", e.LatestClockInTime)
}

// ClockOutWindowError は退勤打刻がルールの許可時刻より前の場合のエラーです。
type ClockOutWindowError struct {
	EarliestClockOutTime TimeOfDay
}

func (e *ClockOutWindowError) Error() string {
	return fmt.Sprintf("退勤打刻は%s以降に可能です", e.EarliestClockOutTime)
}

// EnsureCanClockIn は有効な出勤対象ルールすべてについて、occurredAt の時分が
// 許可時刻以前（境界含む）であることを検証します。複数ルールはANDで評価します。
func (Policy) EnsureCanClockIn(rules []*Rule, occurredAt time.Time) error {
	for _, r := range rules {
		if !r.appliesTo(TargetClockIn) {
			continue
		}
		setting, ok := r.Setting().(AllowClockInOnlyBeforeTime)
		if !ok {
			continue
		}
		if !isBeforeOrEqual(occurredAt, setting.LatestClockInTime) {
			return &ClockInWindowError{LatestClockInTime: setting.LatestClockInTime}
		}
	}
	return nil
}

// EnsureCanClockOut は有効な退勤対象ルールすべてについて、occurredAt の時分が
// 許可時刻以降（境界含む）であることを検証します。
func (Policy) EnsureCanClockOut(rules []*Rule, occurredAt time.Time) error {
	for _, r := range rules {
		if !r.appliesTo(TargetClockOut) {
			continue
		}
		setting, ok := r.Setting().(AllowClockOutOnlyAfterTime)
		if !ok {
			continue
		}
		if !isAfterOrEqual(occurredAt, setting.EarliestClockOutTime) {
			return &ClockOutWindowError{EarliestClockOutTime: setting.EarliestClockOutTime}
		}
	}
	return nil
}
