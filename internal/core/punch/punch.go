package punch

import (
	"errors"
	"time"

	"kintai/internal/core/identity"
)

// Type は打刻の種別を表します。
type Type string

const (
	TypeClockIn    Type = "CLOCK_IN"
	TypeClockOut   Type = "CLOCK_OUT"
	TypeBreakStart Type = "BREAK_START"
	TypeBreakEnd   Type = "BREAK_END"
)

// IsValidType は既知の打刻種別かどうかを返します。
func IsValidType(t Type) bool {
	switch t {
	case TypeClockIn, TypeClockOut, TypeBreakStart, TypeBreakEnd:
		return true
	default:
		return false
	}
}

// Source は通常打刻か修正由来の打刻かを表します。
type Source string

const (
	SourceNormal     Source = "NORMAL"
	SourceCorrection Source = "CORRECTION"
)

var (
	// ErrSourceIDRequired は修正打刻に sourceId が無い場合に返却されます。
	ErrSourceIDRequired = errors.New("修正打刻にはsourceIdが必要です")
	// ErrSourceIDNotAllowed は通常打刻に sourceId が指定された場合に返却されます。
	ErrSourceIDNotAllowed = errors.New("通常打刻にはsourceIdを指定できません")
)

// Event は勤怠タイムライン上の1件の打刻事実です。
// 追記のみで、生成後に更新・削除されることはありません。
type Event struct {
	punchType  Type
	occurredAt time.Time
	createdAt  *time.Time
	source     Source
	sourceID   identity.EntityID
}

// NewEvent は未永続の打刻イベントを生成します。
// source=CORRECTION のとき sourceID 必須、NORMAL のとき禁止という
// 組み合わせ以外は不正とします。
func NewEvent(punchType Type, occurredAt time.Time, source Source, sourceID identity.EntityID) (Event, error) {
	if source == SourceCorrection && sourceID.IsZero() {
		return Event{}, ErrSourceIDRequired
	}
	if source == SourceNormal && !sourceID.IsZero() {
		return Event{}, ErrSourceIDNotAllowed
	}
	return Event{
		punchType:  punchType,
		occurredAt: occurredAt,
		source:     source,
		sourceID:   sourceID,
	}, nil
}

// ReconstructEvent は永続化済みの打刻イベントを復元します。
func ReconstructEvent(punchType Type, occurredAt, createdAt time.Time, source Source, sourceID identity.EntityID) (Event, error) {
	ev, err := NewEvent(punchType, occurredAt, source, sourceID)
	if err != nil {
		return Event{}, err
	}
	at := createdAt
	ev.createdAt = &at
	return ev, nil
}

// Type は打刻種別を返します。
func (e Event) Type() Type {
	return e.punchType
}

// OccurredAt は打刻が実際に発生した時刻を返します。
func (e Event) OccurredAt() time.Time {
	return e.occurredAt
}

// CreatedAt は保存時刻を返します。未永続のイベントでは ok=false です。
// リポジトリはこのフラグで差分保存の対象を判定します。
func (e Event) CreatedAt() (time.Time, bool) {
	if e.createdAt == nil {
		return time.Time{}, false
	}
	return *e.createdAt, true
}

// Persisted は保存済みイベントかどうかを返します。
func (e Event) Persisted() bool {
	return e.createdAt != nil
}

// Source は打刻の由来を返します。
func (e Event) Source() Source {
	return e.source
}

// SourceID は修正由来の場合の勤怠修正IDを返します。通常打刻では ok=false です。
func (e Event) SourceID() (identity.EntityID, bool) {
	if e.sourceID.IsZero() {
		return identity.EntityID{}, false
	}
	return e.sourceID, true
}
