package correction

import (
	"time"

	"kintai/internal/core/punch"
)

// EventType は勤怠修正イベントの種別です。
type EventType string

const (
	EventRequested EventType = "REQUESTED"
	EventRejected  EventType = "REJECTED"
	EventApproved  EventType = "APPROVED"
	EventCanceled  EventType = "CANCELED"
)

// Punch は修正申請・承認イベントに含まれる打刻内容です。
type Punch struct {
	PunchType  punch.Type
	OccurredAt time.Time
}

// Event は申請〜承認フローの事実イベントです。
// 種別ごとに保持する項目が異なるため、EventType で分岐できる直和型として
// 表現します。ステータスは常に最新イベントの種別から導出します。
type Event interface {
	EventType() EventType
	// OccurredAt はイベントが業務上発生した時刻（申請時刻・承認時刻など）です。
	OccurredAt() time.Time
	// ActorUserID はイベントを起こしたユーザーです。
	ActorUserID() string
	// CreatedAt は保存時刻を返します。未永続のイベントでは ok=false で、
	// リポジトリが差分保存の対象を判定するのに使います。
	CreatedAt() (time.Time, bool)
	Persisted() bool
	sealed()
}

type eventMeta struct {
	occurredAt  time.Time
	actorUserID string
	createdAt   *time.Time
}

func (m eventMeta) OccurredAt() time.Time {
	return m.occurredAt
}

func (m eventMeta) ActorUserID() string {
	return m.actorUserID
}

func (m eventMeta) CreatedAt() (time.Time, bool) {
	if m.createdAt == nil {
		return time.Time{}, false
	}
	return *m.createdAt, true
}

func (m eventMeta) Persisted() bool {
	return m.createdAt != nil
}

func (eventMeta) sealed() {}

// RequestedEvent は新規申請または再申請を表します。
type RequestedEvent struct {
	eventMeta
	reason  *string
	punches []Punch
}

func (RequestedEvent) EventType() EventType {
	return EventRequested
}

// Reason は申請理由を返します。再申請では省略されることがあります。
func (e RequestedEvent) Reason() *string {
	return e.reason
}

// Punches は申請された打刻内容を返します。
func (e RequestedEvent) Punches() []Punch {
	return e.punches
}

// RejectedEvent は差し戻しを表します。
type RejectedEvent struct {
	eventMeta
	comment *string
}

func (RejectedEvent) EventType() EventType {
	return EventRejected
}

// Comment は差し戻し時のコメントを返します。
func (e RejectedEvent) Comment() *string {
	return e.comment
}

// ApprovedEvent は承認を表します。承認時点の申請内容のスナップショットを
// 保持するため、後から申請が書き換わっても承認済み内容は変化しません。
type ApprovedEvent struct {
	eventMeta
	punches []Punch
}

func (ApprovedEvent) EventType() EventType {
	return EventApproved
}

// Punches は承認された打刻内容を返します。
func (e ApprovedEvent) Punches() []Punch {
	return e.punches
}

// CanceledEvent は申請者による取り下げを表します。
type CanceledEvent struct {
	eventMeta
}

func (CanceledEvent) EventType() EventType {
	return EventCanceled
}

// ReconstructRequestedEvent は永続化済みの申請イベントを復元します。
func ReconstructRequestedEvent(requestedAt time.Time, requestedBy string, reason *string, punches []Punch, createdAt time.Time) RequestedEvent {
	at := createdAt
	return RequestedEvent{
		eventMeta: eventMeta{occurredAt: requestedAt, actorUserID: requestedBy, createdAt: &at},
		reason:    reason,
		punches:   punches,
	}
}

// ReconstructRejectedEvent は永続化済みの差し戻しイベントを復元します。
func ReconstructRejectedEvent(rejectedAt time.Time, rejectedBy string, comment *string, createdAt time.Time) RejectedEvent {
	at := createdAt
	return RejectedEvent{
		eventMeta: eventMeta{occurredAt: rejectedAt, actorUserID: rejectedBy, createdAt: &at},
		comment:   comment,
	}
}

// ReconstructApprovedEvent は永続化済みの承認イベントを復元します。
func ReconstructApprovedEvent(approvedAt time.Time, approvedBy string, punches []Punch, createdAt time.Time) ApprovedEvent {
	at := createdAt
	return ApprovedEvent{
		eventMeta: eventMeta{occurredAt: approvedAt, actorUserID: approvedBy, createdAt: &at},
		punches:   punches,
	}
}

// ReconstructCanceledEvent は永続化済みの取り下げイベントを復元します。
func ReconstructCanceledEvent(canceledAt time.Time, canceledBy string, createdAt time.Time) CanceledEvent {
	at := createdAt
	return CanceledEvent{
		eventMeta: eventMeta{occurredAt: canceledAt, actorUserID: canceledBy, createdAt: &at},
	}
}
