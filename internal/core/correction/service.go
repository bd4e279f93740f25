package correction

import (
	"context"
	"fmt"
	"time"

	"kintai/internal/core/attendance"
	"kintai/internal/core/identity"
	"kintai/internal/core/punch"
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

// Service は勤怠修正に関するユースケースをまとめます。
// 承認時には修正集約と勤怠記録集約の両方を同一トランザクション内で更新します。
type Service struct {
	repo       Repository
	recordRepo attendance.Repository
	approval   Approval
	clock      Clock
	tx         TransactionManager
}

// UseCase は勤怠修正ユースケースの公開インターフェースです。
type UseCase interface {
	RequestCorrection(ctx context.Context, in RequestCorrectionInput) error
	ApproveCorrection(ctx context.Context, in ApproveCorrectionInput) error
	RejectCorrection(ctx context.Context, in RejectCorrectionInput) error
	CancelCorrection(ctx context.Context, in CancelCorrectionInput) error
	ResubmitCorrection(ctx context.Context, in ResubmitCorrectionInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, recordRepo attendance.Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, recordRepo: recordRepo, clock: clock, tx: tx}
}

// RequestCorrectionInput は修正申請時の入力です。
type RequestCorrectionInput struct {
	UserID     string
	WorkDate   time.Time
	Reason     string
	PunchType  punch.Type
	OccurredAt time.Time
}

// ApproveCorrectionInput は承認時の入力です。
type ApproveCorrectionInput struct {
	UserID     string
	WorkDate   time.Time
	ApprovedBy string
}

// RejectCorrectionInput は差し戻し時の入力です。
type RejectCorrectionInput struct {
	UserID     string
	WorkDate   time.Time
	RejectedBy string
	Comment    *string
}

// CancelCorrectionInput は取り下げ時の入力です。
type CancelCorrectionInput struct {
	UserID     string
	WorkDate   time.Time
	CanceledBy string
}

// ResubmitCorrectionInput は再申請時の入力です。
type ResubmitCorrectionInput struct {
	UserID      string
	WorkDate    time.Time
	RequestedBy string
	Reason      *string
	PunchType   punch.Type
	OccurredAt  time.Time
}

// RequestCorrection は新規の勤怠修正を申請します。
// 同一ユーザー・同一日の修正が既に存在する場合は失敗します。
func (s *Service) RequestCorrection(ctx context.Context, in RequestCorrectionInput) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	if !punch.IsValidType(in.PunchType) {
		return fmt.Errorf("%w: %s", ErrUnknownPunchType, in.PunchType)
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByUserIDAndWorkDate(txCtx, userID, workDate)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyExists
		}

		created, err := NewCorrection(userID, workDate, in.UserID, s.clock.Now(), in.Reason, []Punch{
			{PunchType: in.PunchType, OccurredAt: in.OccurredAt},
		})
		if err != nil {
			return err
		}

		return s.repo.Save(txCtx, created)
	})
}

// ApproveCorrection は勤怠修正を承認し、承認済み打刻を勤怠記録へ反映します。
// 修正集約と勤怠記録集約の保存は同一トランザクションで行うため、
// 記録側の状態遷移が失敗した場合は承認自体も取り消されます。
func (s *Service) ApproveCorrection(ctx context.Context, in ApproveCorrectionInput) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.findExisting(txCtx, userID, workDate, in.UserID)
		if err != nil {
			return err
		}

		if err := target.Approve(in.ApprovedBy, s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, target); err != nil {
			return err
		}

		record, err := s.recordRepo.FindByUserIDAndWorkDate(txCtx, userID, workDate)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: %s:%s", attendance.ErrRecordNotFound, in.UserID, workDate.Format("2006-01-02"))
		}

		if err := s.approval.ApplyApprovedPunches(record, target.ApprovedPunches()); err != nil {
			return err
		}
		return s.recordRepo.Save(txCtx, record)
	})
}

// RejectCorrection は勤怠修正を差し戻します。
func (s *Service) RejectCorrection(ctx context.Context, in RejectCorrectionInput) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.findExisting(txCtx, userID, workDate, in.UserID)
		if err != nil {
			return err
		}

		if err := target.Reject(in.RejectedBy, s.clock.Now(), in.Comment); err != nil {
			return err
		}
		return s.repo.Save(txCtx, target)
	})
}

// CancelCorrection は勤怠修正を取り下げます。
func (s *Service) CancelCorrection(ctx context.Context, in CancelCorrectionInput) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.findExisting(txCtx, userID, workDate, in.UserID)
		if err != nil {
			return err
		}

		if err := target.Cancel(in.CanceledBy, s.clock.Now()); err != nil {
			return err
		}
		return s.repo.Save(txCtx, target)
	})
}

// ResubmitCorrection は差し戻された勤怠修正を再申請します。
func (s *Service) ResubmitCorrection(ctx context.Context, in ResubmitCorrectionInput) error {
	userID, err := parseUserID(in.UserID)
	if err != nil {
		return err
	}
	if !punch.IsValidType(in.PunchType) {
		return fmt.Errorf("%w: %s", ErrUnknownPunchType, in.PunchType)
	}
	workDate := normalizeWorkDate(in.WorkDate)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.findExisting(txCtx, userID, workDate, in.UserID)
		if err != nil {
			return err
		}

		if err := target.Resubmit(in.RequestedBy, s.clock.Now(), in.Reason, []Punch{
			{PunchType: in.PunchType, OccurredAt: in.OccurredAt},
		}); err != nil {
			return err
		}
		return s.repo.Save(txCtx, target)
	})
}

func (s *Service) findExisting(ctx context.Context, userID identity.EntityID, workDate time.Time, rawUserID string) (*Correction, error) {
	found, err := s.repo.FindByUserIDAndWorkDate(ctx, userID, workDate)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s:%s", ErrCorrectionNotFound, rawUserID, workDate.Format("2006-01-02"))
	}
	return found, nil
}

func parseUserID(raw string) (identity.EntityID, error) {
	userID, err := identity.New(raw)
	if err != nil {
		return identity.EntityID{}, fmt.Errorf("%w: %v", ErrInvalidUserID, err)
	}
	return userID, nil
}

func normalizeWorkDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
