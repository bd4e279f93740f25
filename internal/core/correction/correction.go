package correction

import (
	"time"

	"kintai/internal/core/identity"
)

// Status は勤怠修正のイベント列から導出される状態です。保存はしません。
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusRejected Status = "REJECTED"
	StatusApproved Status = "APPROVED"
	StatusCanceled Status = "CANCELED"
)

// Correction は勤怠修正の申請〜承認フローを表すイベントソーシング集約です。
// (userId, workDate) につき同時に1件のみ存在します（重複はユースケースの
// 事前チェックと永続化層の一意制約で防ぎます）。
type Correction struct {
	id       identity.EntityID
	userID   identity.EntityID
	workDate time.Time
	// reason は初回申請時の理由です。再申請では更新されず、
	// 再申請の理由は新しい REQUESTED イベント側にのみ記録されます。
	reason string
	events []Event
}

// NewCorrection は新規の勤怠修正申請を作成します。
func NewCorrection(userID identity.EntityID, workDate time.Time, requestedBy string, requestedAt time.Time, reason string, punches []Punch) (*Correction, error) {
	if err := validatePunches(punches); err != nil {
		return nil, err
	}

	requested := RequestedEvent{
		eventMeta: eventMeta{occurredAt: requestedAt, actorUserID: requestedBy},
		reason:    &reason,
		punches:   punches,
	}

	return &Correction{
		id:       identity.Generate(),
		userID:   userID,
		workDate: workDate,
		reason:   reason,
		events:   []Event{requested},
	}, nil
}

// ReconstructCorrection は永続化された状態から勤怠修正を復元します。
// イベントが1件も無い状態は不正です。
func ReconstructCorrection(id, userID identity.EntityID, workDate time.Time, reason string, events []Event) (*Correction, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return &Correction{
		id:       id,
		userID:   userID,
		workDate: workDate,
		reason:   reason,
		events:   events,
	}, nil
}

// Approve は申請中の勤怠修正を承認します。
// 承認イベントには最新の REQUESTED イベントの打刻内容をコピーして固定します
// （差し戻し→再申請→承認の経路では再申請の内容が承認されます）。
func (c *Correction) Approve(approvedBy string, approvedAt time.Time) error {
	if c.Status() != StatusPending {
		return ErrApproveNotPending
	}

	requested, ok := c.latestRequestedEvent()
	if !ok {
		return ErrNoRequestedEvent
	}

	c.events = append(c.events, ApprovedEvent{
		eventMeta: eventMeta{occurredAt: approvedAt, actorUserID: approvedBy},
		punches:   requested.punches,
	})
	return nil
}

// Reject は申請中の勤怠修正を差し戻します。
func (c *Correction) Reject(rejectedBy string, rejectedAt time.Time, comment *string) error {
	if c.Status() != StatusPending {
		return ErrRejectNotPending
	}

	c.events = append(c.events, RejectedEvent{
		eventMeta: eventMeta{occurredAt: rejectedAt, actorUserID: rejectedBy},
		comment:   comment,
	})
	return nil
}

// Cancel は申請中の勤怠修正を取り下げます。
func (c *Correction) Cancel(canceledBy string, canceledAt time.Time) error {
	if c.Status() != StatusPending {
		return ErrCancelNotPending
	}

	c.events = append(c.events, CanceledEvent{
		eventMeta: eventMeta{occurredAt: canceledAt, actorUserID: canceledBy},
	})
	return nil
}

// Resubmit は差し戻された勤怠修正を再申請します。差し戻し状態のみ許可され、
// 集約トップレベルの reason は更新しません。
func (c *Correction) Resubmit(requestedBy string, requestedAt time.Time, reason *string, punches []Punch) error {
	if c.Status() != StatusRejected {
		return ErrResubmitNotRejected
	}

	if err := validatePunches(punches); err != nil {
		return err
	}

	c.events = append(c.events, RequestedEvent{
		eventMeta: eventMeta{occurredAt: requestedAt, actorUserID: requestedBy},
		reason:    reason,
		punches:   punches,
	})
	return nil
}

// ApprovedPunches は最新の承認イベントの打刻内容を返します。
// 未承認の場合は空を返します。
func (c *Correction) ApprovedPunches() []Punch {
	for i := len(c.events) - 1; i >= 0; i-- {
		if approved, ok := c.events[i].(ApprovedEvent); ok {
			return approved.punches
		}
	}
	return nil
}

// Status は最新イベントの種別から現在の状態を導出します。
func (c *Correction) Status() Status {
	latest := c.events[len(c.events)-1]
	switch latest.EventType() {
	case EventRequested:
		return StatusPending
	case EventRejected:
		return StatusRejected
	case EventApproved:
		return StatusApproved
	case EventCanceled:
		return StatusCanceled
	default:
		// Event は sealed のためここには到達しない
		panic("correction: unknown event type " + string(latest.EventType()))
	}
}

// ID は勤怠修正のIDを返します。
func (c *Correction) ID() identity.EntityID {
	return c.id
}

// UserID は対象ユーザーのIDを返します。
func (c *Correction) UserID() identity.EntityID {
	return c.userID
}

// WorkDate は修正対象の営業日を返します。
func (c *Correction) WorkDate() time.Time {
	return c.workDate
}

// Reason は初回申請時の理由を返します。
func (c *Correction) Reason() string {
	return c.reason
}

// Events はイベントを追記順で返します。
func (c *Correction) Events() []Event {
	return c.events
}

func (c *Correction) latestRequestedEvent() (RequestedEvent, bool) {
	for i := len(c.events) - 1; i >= 0; i-- {
		if requested, ok := c.events[i].(RequestedEvent); ok {
			return requested, true
		}
	}
	return RequestedEvent{}, false
}

// 将来的に複数打刻の修正を許可する可能性があるため配列で保持しているが、
// 現状は1件のみに制限している。
func validatePunches(punches []Punch) error {
	if len(punches) != 1 {
		return ErrInvalidPunchCount
	}
	return nil
}
