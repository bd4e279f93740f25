package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"kintai/internal/core/correction"
	"kintai/internal/core/identity"
	"kintai/internal/core/punch"
	pgdb "kintai/internal/platform/db/postgres"
)

// AttendanceCorrectionRepository は PostgreSQL を利用した勤怠修正永続化の実装です。
// イベントは追記専用で、Save は未永続のイベントのみを書き込みます。
type AttendanceCorrectionRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceCorrectionRepository は AttendanceCorrectionRepository を生成します。
func NewAttendanceCorrectionRepository(pool pgdb.Queryer) *AttendanceCorrectionRepository {
	return &AttendanceCorrectionRepository{pool: pool}
}

// punchJSON はイベントの punches カラム（jsonb）のワイヤ表現です。
type punchJSON struct {
	PunchType  string    `json:"punchType"`
	OccurredAt time.Time `json:"occurredAt"`
}

// FindByUserIDAndWorkDate はユーザーと営業日で勤怠修正を取得します。
// 存在しない場合は nil を返します。
func (r *AttendanceCorrectionRepository) FindByUserIDAndWorkDate(ctx context.Context, userID identity.EntityID, workDate time.Time) (*correction.Correction, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var (
		correctionID string
		reason       string
	)
	err := exec.QueryRow(ctx, `
        SELECT id, reason
          FROM attendance_corrections
         WHERE user_id = $1 AND work_date = $2
         LIMIT 1
    `, userID.String(), workDate).Scan(&correctionID, &reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := exec.Query(ctx, `
        SELECT event_type, occurred_at, actor_user_id, reason, comment, punches, created_at
          FROM correction_events
         WHERE correction_id = $1
         ORDER BY created_at, id
    `, correctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []correction.Event
	for rows.Next() {
		ev, err := scanCorrectionEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	id, err := identity.Reconstruct(correctionID)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid correction id %s: %w", correctionID, err)
	}

	return correction.ReconstructCorrection(id, userID, workDate, reason, events)
}

// Save は勤怠修正と未永続のイベントを保存します。
// 修正本体は冪等な upsert、イベントは追記のみです。
func (r *AttendanceCorrectionRepository) Save(ctx context.Context, c *correction.Correction) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	_, err := exec.Exec(ctx, `
        INSERT INTO attendance_corrections (id, user_id, work_date, reason)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, work_date) DO NOTHING
    `, c.ID().String(), c.UserID().String(), c.WorkDate(), c.Reason())
	if err != nil {
		return translateCorrectionPgError(err)
	}

	for _, ev := range c.Events() {
		if ev.Persisted() {
			continue
		}
		if err := r.insertEvent(ctx, exec, c.ID(), ev); err != nil {
			return err
		}
	}

	return nil
}

func (r *AttendanceCorrectionRepository) insertEvent(ctx context.Context, exec pgdb.Queryer, correctionID identity.EntityID, ev correction.Event) error {
	var (
		reason  *string
		comment *string
		punches []byte
	)

	switch typed := ev.(type) {
	case correction.RequestedEvent:
		reason = typed.Reason()
		encoded, err := encodePunches(typed.Punches())
		if err != nil {
			return err
		}
		punches = encoded
	case correction.ApprovedEvent:
		encoded, err := encodePunches(typed.Punches())
		if err != nil {
			return err
		}
		punches = encoded
	case correction.RejectedEvent:
		comment = typed.Comment()
	case correction.CanceledEvent:
	default:
		return fmt.Errorf("postgres: unsupported correction event type %s", ev.EventType())
	}

	_, err := exec.Exec(ctx, `
        INSERT INTO correction_events (correction_id, event_type, occurred_at, actor_user_id, reason, comment, punches, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now())
    `, correctionID.String(), string(ev.EventType()), ev.OccurredAt(), ev.ActorUserID(), reason, comment, punches)
	if err != nil {
		return translateCorrectionPgError(err)
	}
	return nil
}

func scanCorrectionEvent(row pgx.Row) (correction.Event, error) {
	var (
		eventType   string
		occurredAt  time.Time
		actorUserID string
		reason      sql.NullString
		comment     sql.NullString
		punches     []byte
		createdAt   time.Time
	)

	if err := row.Scan(&eventType, &occurredAt, &actorUserID, &reason, &comment, &punches, &createdAt); err != nil {
		return nil, err
	}

	switch correction.EventType(eventType) {
	case correction.EventRequested:
		decoded, err := decodePunches(punches)
		if err != nil {
			return nil, err
		}
		return correction.ReconstructRequestedEvent(occurredAt, actorUserID, nullableString(reason), decoded, createdAt), nil
	case correction.EventApproved:
		decoded, err := decodePunches(punches)
		if err != nil {
			return nil, err
		}
		return correction.ReconstructApprovedEvent(occurredAt, actorUserID, decoded, createdAt), nil
	case correction.EventRejected:
		return correction.ReconstructRejectedEvent(occurredAt, actorUserID, nullableString(comment), createdAt), nil
	case correction.EventCanceled:
		return correction.ReconstructCanceledEvent(occurredAt, actorUserID, createdAt), nil
	default:
		return nil, fmt.Errorf("postgres: unknown correction event type %s", eventType)
	}
}

func encodePunches(punches []correction.Punch) ([]byte, error) {
	wire := make([]punchJSON, 0, len(punches))
	for _, p := range punches {
		wire = append(wire, punchJSON{PunchType: string(p.PunchType), OccurredAt: p.OccurredAt})
	}
	encoded, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode punches: %w", err)
	}
	return encoded, nil
}

func decodePunches(raw []byte) ([]correction.Punch, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var wire []punchJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("postgres: decode punches: %w", err)
	}
	punches := make([]correction.Punch, 0, len(wire))
	for _, p := range wire {
		punches = append(punches, correction.Punch{PunchType: punch.Type(p.PunchType), OccurredAt: p.OccurredAt})
	}
	return punches, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func translateCorrectionPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return correction.ErrAlreadyExists
	}
	return err
}
