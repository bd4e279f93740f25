package attendance

import (
	"context"
	"fmt"
	"time"

	"kintai/internal/core/identity"
	"kintai/internal/core/rule"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は勤怠記録に関するユースケースをまとめます。
// 打刻時には有効な勤怠ルールを読み込み、時刻制約を確認してから
// 集約の状態遷移を行います。
type Service struct {
	repo     Repository
	ruleRepo rule.Repository
	policy   rule.Policy
	clock    Clock
	tx       TransactionManager
}

// UseCase は勤怠記録ユースケースの公開インターフェースです。
type UseCase interface {
	ClockIn(ctx context.Context, in PunchInput) error
	ClockOut(ctx context.Context, in PunchInput) error
	BreakStart(ctx context.Context, in PunchInput) error
	BreakEnd(ctx context.Context, in PunchInput) error
	GetRecord(ctx context.Context, in GetRecordInput) (*Record, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, ruleRepo rule.Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, ruleRepo: ruleRepo, clock: clock, tx: tx}
}

// PunchInput は打刻系ユースケースの入力です。
type PunchInput struct {
	UserID     string
	WorkDate   time.Time
	OccurredAt time.Time
}

// GetRecordInput は勤怠記録取得時の入力です。
type GetRecordInput struct {
	UserID   string
	WorkDate time.Time
}

// ClockIn は出勤打刻を記録します。対象日の勤怠記録が無ければ作成します。
func (s *Service) ClockIn(ctx context.Context, in PunchInput) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureRulesAllowClockIn(txCtx, in.OccurredAt); err != nil {
			return err
		}

		record, err := s.repo.FindByUserIDAndWorkDate(txCtx, userID, workDate)
		if err != nil {
			return err
		}
		if record == nil {
			record = NewRecord(userID, workDate)
		}

		if err := record.ClockIn(in.OccurredAt); err != nil {
			return err
		}
		return s.repo.Save(txCtx, record)
	})
}

// ClockOut は退勤打刻を記録します。
func (s *Service) ClockOut(ctx context.Context, in PunchInput) error {
	return s.punchExisting(ctx, in, func(txCtx context.Context, record *Record) error {
		if err := s.ensureRulesAllowClockOut(txCtx, in.OccurredAt); err != nil {
			return err
		}
		return record.ClockOut(in.OccurredAt)
	})
}

// BreakStart は休憩開始打刻を記録します。
func (s *Service) BreakStart(ctx context.Context, in PunchInput) error {
	return s.punchExisting(ctx, in, func(_ context.Context, record *Record) error {
		return record.BreakStart(in.OccurredAt)
	})
}

// BreakEnd は休憩終了打刻を記録します。
func (s *Service) BreakEnd(ctx context.Context, in PunchInput) error {
	return s.punchExisting(ctx, in, func(_ context.Context, record *Record) error {
		return record.BreakEnd(in.OccurredAt)
	})
}

// GetRecord は対象日の勤怠記録を取得します。
func (s *Service) GetRecord(ctx context.Context, in GetRecordInput) (*Record, error) {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	workDate := normalizeWorkDate(in.WorkDate)

	var record *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByUserIDAndWorkDate(txCtx, userID, workDate)
		if err != nil {
			return err
		}
		if found == nil {
			return notFound(in.UserID, workDate)
		}
		record = found
		return nil
	}); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *Service) punchExisting(ctx context.Context, in PunchInput, mutate func(context.Context, *Record) error) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		record, err := s.repo.FindByUserIDAndWorkDate(txCtx, userID, workDate)
		if err != nil {
			return err
		}
		if record == nil {
			return notFound(in.UserID, workDate)
		}

		if err := mutate(txCtx, record); err != nil {
			return err
		}
		return s.repo.Save(txCtx, record)
	})
}

func (s *Service) ensureRulesAllowClockIn(ctx context.Context, occurredAt time.Time) error {
	rules, err := s.ruleRepo.FindAllEnabled(ctx)
	if err != nil {
		return err
	}
	return s.policy.EnsureCanClockIn(rules, occurredAt)
}

func (s *Service) ensureRulesAllowClockOut(ctx context.Context, occurredAt time.Time) error {
	rules, err := s.ruleRepo.FindAllEnabled(ctx)
	if err != nil {
		return err
	}
	return s.policy.EnsureCanClockOut(rules, occurredAt)
}

func parseUserID(raw string) (identity.EntityID, error) {
	userID, err := identity.New(raw)
	if err != nil {
		return identity.EntityID{}, fmt.Errorf("%w: %v", ErrInvalidUserID, err)
	}
	return userID, nil
}

func notFound(userID string, workDate time.Time) error {
	return fmt.Errorf("%w: %s:%s", ErrRecordNotFound, userID, workDate.Format("2006-01-02"))
}

func normalizeWorkDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
