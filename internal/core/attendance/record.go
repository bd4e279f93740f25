package attendance

import (
	"time"

	"kintai/internal/core/identity"
	"kintai/internal/core/punch"
)

// Status は勤怠記録から導出される勤務状態です。
// カラムとしては保存せず、打刻ログから毎回計算します。
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusWorking    Status = "WORKING"
	StatusBreaking   Status = "BREAKING"
	StatusFinished   Status = "FINISHED"
)

// Record は1ユーザー・1営業日の勤怠記録集約です。
// 修正申請は別集約のため、ここは打刻の事実ログのみを持ちます。
type Record struct {
	id          identity.EntityID
	userID      identity.EntityID
	workDate    time.Time
	punchEvents []punch.Event
}

// NewRecord はその日最初の打刻に先立って新しい勤怠記録を生成します。
func NewRecord(userID identity.EntityID, workDate time.Time) *Record {
	return &Record{
		id:       identity.Generate(),
		userID:   userID,
		workDate: workDate,
	}
}

// ReconstructRecord は永続化された状態から勤怠記録を復元します。
func ReconstructRecord(id, userID identity.EntityID, workDate time.Time, punchEvents []punch.Event) *Record {
	return &Record{
		id:          id,
		userID:      userID,
		workDate:    workDate,
		punchEvents: punchEvents,
	}
}

// ClockIn は出勤打刻を追加します。勤務開始前のみ許可されます。
func (r *Record) ClockIn(occurredAt time.Time) error {
	if current := r.Status(); current != StatusNotStarted {
		return &InvalidStateError{Operation: "出勤", CurrentStatus: current}
	}
	return r.appendPunch(punch.TypeClockIn, occurredAt)
}

// ClockOut は退勤打刻を追加します。勤務中のみ許可されます。
func (r *Record) ClockOut(occurredAt time.Time) error {
	if current := r.Status(); current != StatusWorking {
		return &InvalidStateError{Operation: "退勤", CurrentStatus: current}
	}
	return r.appendPunch(punch.TypeClockOut, occurredAt)
}

// BreakStart は休憩開始打刻を追加します。勤務中のみ許可されます。
func (r *Record) BreakStart(occurredAt time.Time) error {
	if current := r.Status(); current != StatusWorking {
		return &InvalidStateError{Operation: "休憩の開始", CurrentStatus: current}
	}
	return r.appendPunch(punch.TypeBreakStart, occurredAt)
}

// BreakEnd は休憩終了打刻を追加します。休憩中のみ許可されます。
func (r *Record) BreakEnd(occurredAt time.Time) error {
	if current := r.Status(); current != StatusBreaking {
		return &InvalidStateError{Operation: "休憩の終了", CurrentStatus: current}
	}
	return r.appendPunch(punch.TypeBreakEnd, occurredAt)
}

func (r *Record) appendPunch(punchType punch.Type, occurredAt time.Time) error {
	ev, err := punch.NewEvent(punchType, occurredAt, punch.SourceNormal, identity.EntityID{})
	if err != nil {
		return err
	}
	r.punchEvents = append(r.punchEvents, ev)
	return nil
}

// Status は workDate と同じ暦日に発生した打刻のうち occurredAt が最新の
// ものから現在の勤務状態を導出します。挿入順ではなく発生時刻で判定するため、
// 後から遡って登録された打刻も正しく扱えます。別日の打刻は無視します。
func (r *Record) Status() Status {
	var latest *punch.Event
	for i := range r.punchEvents {
		ev := &r.punchEvents[i]
		if !sameDate(ev.OccurredAt(), r.workDate) {
			continue
		}
		if latest == nil || ev.OccurredAt().After(latest.OccurredAt()) {
			latest = ev
		}
	}

	if latest == nil {
		return StatusNotStarted
	}

	switch latest.Type() {
	case punch.TypeClockIn, punch.TypeBreakEnd:
		return StatusWorking
	case punch.TypeBreakStart:
		return StatusBreaking
	case punch.TypeClockOut:
		return StatusFinished
	default:
		return StatusNotStarted
	}
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ID は勤怠記録のIDを返します。
func (r *Record) ID() identity.EntityID {
	return r.id
}

// UserID は対象ユーザーのIDを返します。
func (r *Record) UserID() identity.EntityID {
	return r.userID
}

// WorkDate は対象の営業日を返します。
func (r *Record) WorkDate() time.Time {
	return r.workDate
}

// PunchEvents は打刻イベントを追記順で返します。
func (r *Record) PunchEvents() []punch.Event {
	return r.punchEvents
}
