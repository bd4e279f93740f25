package rule

import (
	"errors"
	"testing"
	"time"
)

func timeOfDay(t *testing.T, raw string) TimeOfDay {
	t.Helper()
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) error: %v", raw, err)
	}
	return parsed
}

func occurredAt(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func clockInRule(t *testing.T, limit string, enabled bool, targets ...TargetAction) *Rule {
	t.Helper()
	if len(targets) == 0 {
		targets = []TargetAction{TargetClockIn}
	}
	created, err := New(targets, TypeAllowClockInOnlyBeforeTime, AllowClockInOnlyBeforeTime{LatestClockInTime: timeOfDay(t, limit)}, enabled)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return created
}

func clockOutRule(t *testing.T, limit string, enabled bool) *Rule {
	t.Helper()
	created, err := New([]TargetAction{TargetClockOut}, TypeAllowClockOutOnlyAfterTime, AllowClockOutOnlyAfterTime{EarliestClockOutTime: timeOfDay(t, limit)}, enabled)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return created
}

func TestPolicy_EnsureCanClockIn(t *testing.T) {
	t.Parallel()

	rules := []*Rule{clockInRule(t, "10:00", true)}

	// 境界時刻は許可
	if err := (Policy{}).EnsureCanClockIn(rules, occurredAt(10, 0)); err != nil {
		t.Fatalf("expected boundary to be allowed, got %v", err)
	}
	if err := (Policy{}).EnsureCanClockIn(rules, occurredAt(9, 59)); err != nil {
		t.Fatalf("expected earlier time to be allowed, got %v", err)
	}

	err := (Policy{}).EnsureCanClockIn(rules, occurredAt(10, 1))
	var windowErr *ClockInWindowError
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected ClockInWindowError, got %v", err)
	}
	if got := windowErr.Error(); got != "出勤打刻は10:00までです" {
		t.Errorf("unexpected error message: %s", got)
	}
}

func TestPolicy_EnsureCanClockOut(t *testing.T) {
	t.Parallel()

	rules := []*Rule{clockOutRule(t, "18:00", true)}

	if err := (Policy{}).EnsureCanClockOut(rules, occurredAt(18, 0)); err != nil {
		t.Fatalf("expected boundary to be allowed, got %v", err)
	}
	if err := (Policy{}).EnsureCanClockOut(rules, occurredAt(19, 30)); err != nil {
		t.Fatalf("expected later time to be allowed, got %v", err)
	}

	err := (Policy{}).EnsureCanClockOut(rules, occurredAt(17, 59))
	var windowErr *ClockOutWindowError
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected ClockOutWindowError, got %v", err)
	}
	if got := windowErr.Error(); got != "退勤打刻は18:00以降に可能です" {
		t.Errorf("unexpected error message: %s", got)
	}
}

func TestPolicy_IgnoresDisabledRules(t *testing.T) {
	t.Parallel()

	rules := []*Rule{clockInRule(t, "10:00", false)}

	if err := (Policy{}).EnsureCanClockIn(rules, occurredAt(11, 0)); err != nil {
		t.Fatalf("expected disabled rule to be ignored, got %v", err)
	}
}

func TestPolicy_IgnoresRulesForOtherActions(t *testing.T) {
	t.Parallel()

	// 出勤のみを対象にしたルールは退勤判定に影響しない
	rules := []*Rule{clockInRule(t, "10:00", true)}

	if err := (Policy{}).EnsureCanClockOut(rules, occurredAt(9, 0)); err != nil {
		t.Fatalf("expected clock-out to ignore clock-in rule, got %v", err)
	}
}

func TestPolicy_MultipleRulesAllMustPass(t *testing.T) {
	t.Parallel()

	rules := []*Rule{
		clockInRule(t, "11:00", true),
		clockInRule(t, "10:00", true),
	}

	err := (Policy{}).EnsureCanClockIn(rules, occurredAt(10, 30))
	var windowErr *ClockInWindowError
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected stricter rule to reject, got %v", err)
	}
	if windowErr.LatestClockInTime.String() != "10:00" {
		t.Errorf("expected 10:00 rule to reject, got %s", windowErr.LatestClockInTime)
	}
}

func TestNewRule_TypeSettingMismatch(t *testing.T) {
	t.Parallel()

	_, err := New([]TargetAction{TargetClockIn}, TypeAllowClockInOnlyBeforeTime, AllowClockOutOnlyAfterTime{EarliestClockOutTime: timeOfDay(t, "18:00")}, true)
	if !errors.Is(err, ErrTypeSettingMismatch) {
		t.Fatalf("expected ErrTypeSettingMismatch, got %v", err)
	}

	_, err = New([]TargetAction{TargetClockIn}, TypeAllowClockInOnlyBeforeTime, nil, true)
	if !errors.Is(err, ErrTypeSettingMismatch) {
		t.Fatalf("expected ErrTypeSettingMismatch for nil setting, got %v", err)
	}
}
