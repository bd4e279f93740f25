package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"kintai/internal/core/attendance"
	"kintai/internal/core/identity"
	"kintai/internal/core/punch"
	pgdb "kintai/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

// AttendanceRecordRepository は PostgreSQL を利用した勤怠記録永続化の実装です。
// 打刻イベントは追記専用で、Save は未永続のイベントのみを書き込みます。
type AttendanceRecordRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRecordRepository は AttendanceRecordRepository を生成します。
func NewAttendanceRecordRepository(pool pgdb.Queryer) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{pool: pool}
}

// FindByUserIDAndWorkDate はユーザーと営業日で勤怠記録を取得します。
// 存在しない場合は nil を返します。
func (r *AttendanceRecordRepository) FindByUserIDAndWorkDate(ctx context.Context, userID identity.EntityID, workDate time.Time) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var recordID string
	err := exec.QueryRow(ctx, `
        SELECT id
          FROM attendance_records
         WHERE user_id = $1 AND work_date = $2
         LIMIT 1
    `, userID.String(), workDate).Scan(&recordID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := exec.Query(ctx, `
        SELECT punch_type, occurred_at, source, source_id, created_at
          FROM punch_events
         WHERE record_id = $1
         ORDER BY created_at, id
    `, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []punch.Event
	for rows.Next() {
		ev, err := scanPunchEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	id, err := identity.Reconstruct(recordID)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid record id %s: %w", recordID, err)
	}

	return attendance.ReconstructRecord(id, userID, workDate, events), nil
}

// Save は勤怠記録と未永続の打刻イベントを保存します。
// 記録本体は冪等な upsert、イベントは追記のみです。
func (r *AttendanceRecordRepository) Save(ctx context.Context, record *attendance.Record) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	_, err := exec.Exec(ctx, `
        INSERT INTO attendance_records (id, user_id, work_date)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, work_date) DO NOTHING
    `, record.ID().String(), record.UserID().String(), record.WorkDate())
	if err != nil {
		return translateRecordPgError(err)
	}

	for _, ev := range record.PunchEvents() {
		if ev.Persisted() {
			continue
		}

		var sourceID any
		if id, ok := ev.SourceID(); ok {
			sourceID = id.String()
		}

		_, err := exec.Exec(ctx, `
            INSERT INTO punch_events (record_id, punch_type, occurred_at, source, source_id, created_at)
            VALUES ($1, $2, $3, $4, $5, now())
        `, record.ID().String(), string(ev.Type()), ev.OccurredAt(), string(ev.Source()), sourceID)
		if err != nil {
			return translateRecordPgError(err)
		}
	}

	return nil
}

func scanPunchEvent(row pgx.Row) (punch.Event, error) {
	var (
		punchType  string
		occurredAt time.Time
		source     string
		sourceID   sql.NullString
		createdAt  time.Time
	)

	if err := row.Scan(&punchType, &occurredAt, &source, &sourceID, &createdAt); err != nil {
		return punch.Event{}, err
	}

	var correctionID identity.EntityID
	if sourceID.Valid {
		id, err := identity.Reconstruct(sourceID.String)
		if err != nil {
			return punch.Event{}, fmt.Errorf("postgres: invalid source id %s: %w", sourceID.String, err)
		}
		correctionID = id
	}

	return punch.ReconstructEvent(punch.Type(punchType), occurredAt, createdAt, punch.Source(source), correctionID)
}

func translateRecordPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("postgres: %w: %s", attendance.ErrDuplicateRecord, pgErr.ConstraintName)
	}
	return err
}
