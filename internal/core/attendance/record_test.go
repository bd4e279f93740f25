package attendance

import (
	"errors"
	"testing"
	"time"

	"kintai/internal/core/identity"
	"kintai/internal/core/punch"
)

func workDate() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

func at(hour, minute int) time.Time {
	d := workDate()
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func persistedPunch(t *testing.T, punchType punch.Type, occurredAt time.Time) punch.Event {
	t.Helper()
	ev, err := punch.ReconstructEvent(punchType, occurredAt, occurredAt, punch.SourceNormal, identity.EntityID{})
	if err != nil {
		t.Fatalf("ReconstructEvent error: %v", err)
	}
	return ev
}

func TestRecord_FullDaySequence(t *testing.T) {
	t.Parallel()

	record := NewRecord(identity.Generate(), workDate())

	if got := record.Status(); got != StatusNotStarted {
		t.Fatalf("expected NOT_STARTED before first punch, got %s", got)
	}

	if err := record.ClockIn(at(9, 0)); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if got := record.Status(); got != StatusWorking {
		t.Fatalf("expected WORKING after clock in, got %s", got)
	}

	if err := record.BreakStart(at(12, 0)); err != nil {
		t.Fatalf("BreakStart returned error: %v", err)
	}
	if got := record.Status(); got != StatusBreaking {
		t.Fatalf("expected BREAKING after break start, got %s", got)
	}

	if err := record.BreakEnd(at(13, 0)); err != nil {
		t.Fatalf("BreakEnd returned error: %v", err)
	}
	if got := record.Status(); got != StatusWorking {
		t.Fatalf("expected WORKING after break end, got %s", got)
	}

	if err := record.ClockOut(at(18, 0)); err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
	if got := record.Status(); got != StatusFinished {
		t.Fatalf("expected FINISHED after clock out, got %s", got)
	}

	if got := len(record.PunchEvents()); got != 4 {
		t.Fatalf("expected 4 punch events, got %d", got)
	}
}

func TestRecord_DoubleClockIn(t *testing.T) {
	t.Parallel()

	record := NewRecord(identity.Generate(), workDate())

	if err := record.ClockIn(at(9, 0)); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	err := record.ClockIn(at(9, 5))
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if stateErr.CurrentStatus != StatusWorking {
		t.Errorf("expected current status WORKING, got %s", stateErr.CurrentStatus)
	}
	if got := stateErr.Error(); got != "出勤ができません。現在のステータス: WORKING" {
		t.Errorf("unexpected error message: %s", got)
	}
}

func TestRecord_ClockOutBeforeClockIn(t *testing.T) {
	t.Parallel()

	record := NewRecord(identity.Generate(), workDate())

	err := record.ClockOut(at(18, 0))
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if stateErr.CurrentStatus != StatusNotStarted {
		t.Errorf("expected current status NOT_STARTED, got %s", stateErr.CurrentStatus)
	}
}

func TestRecord_BreakRequiresWorking(t *testing.T) {
	t.Parallel()

	record := NewRecord(identity.Generate(), workDate())

	var stateErr *InvalidStateError
	if err := record.BreakStart(at(12, 0)); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError for break start, got %v", err)
	}
	if err := record.BreakEnd(at(13, 0)); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError for break end, got %v", err)
	}

	if err := record.ClockIn(at(9, 0)); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if err := record.BreakStart(at(12, 0)); err != nil {
		t.Fatalf("BreakStart returned error: %v", err)
	}

	// 休憩中の休憩開始は不可
	if err := record.BreakStart(at(12, 30)); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError for double break start, got %v", err)
	}
}

func TestRecord_StatusUsesOccurredAtOrder(t *testing.T) {
	t.Parallel()

	// 挿入順ではなく発生時刻の順でステータスを導出する。
	// 退勤(18:00)が先に永続化済みでも、後から休憩(12:00台)を足した場合は
	// 最新の発生時刻である退勤が勝つ。
	events := []punch.Event{
		persistedPunch(t, punch.TypeClockIn, at(9, 0)),
		persistedPunch(t, punch.TypeClockOut, at(18, 0)),
		persistedPunch(t, punch.TypeBreakStart, at(12, 0)),
	}

	record := ReconstructRecord(identity.Generate(), identity.Generate(), workDate(), events)
	if got := record.Status(); got != StatusFinished {
		t.Fatalf("expected FINISHED from latest occurredAt, got %s", got)
	}
}

func TestRecord_StatusIgnoresOtherDates(t *testing.T) {
	t.Parallel()

	otherDay := at(9, 0).AddDate(0, 0, -1)
	events := []punch.Event{
		persistedPunch(t, punch.TypeClockIn, otherDay),
	}

	record := ReconstructRecord(identity.Generate(), identity.Generate(), workDate(), events)
	if got := record.Status(); got != StatusNotStarted {
		t.Fatalf("expected NOT_STARTED when punches are on another date, got %s", got)
	}

	if err := record.ClockIn(at(9, 0)); err != nil {
		t.Fatalf("ClockIn after other-date punch returned error: %v", err)
	}
}

func TestRecord_NewPunchesAreUnpersisted(t *testing.T) {
	t.Parallel()

	record := NewRecord(identity.Generate(), workDate())
	if err := record.ClockIn(at(9, 0)); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	ev := record.PunchEvents()[0]
	if ev.Persisted() {
		t.Fatalf("expected new punch to be unpersisted")
	}
	if _, ok := ev.CreatedAt(); ok {
		t.Fatalf("expected CreatedAt to be absent for new punch")
	}
}
