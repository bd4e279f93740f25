package rule

import (
	"context"
	"fmt"

	"kintai/internal/core/identity"
)

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

// Service は勤怠ルールに関するユースケースをまとめます。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase は勤怠ルールユースケースの公開インターフェースです。
type UseCase interface {
	CreateRule(ctx context.Context, in CreateRuleInput) (*Rule, error)
	UpdateRule(ctx context.Context, in UpdateRuleInput) (*Rule, error)
	DeleteRule(ctx context.Context, in DeleteRuleInput) error
	GetRule(ctx context.Context, in GetRuleInput) (*Rule, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// SettingInput はルール設定の入力です。種別に応じた時刻のみを使用します。
type SettingInput struct {
	Type                 Type
	LatestClockInTime    string
	EarliestClockOutTime string
}

// CreateRuleInput はルール作成時の入力です。
type CreateRuleInput struct {
	Targets []TargetAction
	Type    Type
	Setting SettingInput
	Enabled bool
}

// UpdateRuleInput はルール更新時の入力です。全項目を置き換えます。
type UpdateRuleInput struct {
	RuleID  string
	Targets []TargetAction
	Type    Type
	Setting SettingInput
	Enabled bool
}

// DeleteRuleInput はルール削除時の入力です。
type DeleteRuleInput struct {
	RuleID string
}

// GetRuleInput はルール取得時の入力です。
type GetRuleInput struct {
	RuleID string
}

// CreateRule は新しい勤怠ルールを作成します。
func (s *Service) CreateRule(ctx context.Context, in CreateRuleInput) (*Rule, error) {
	if err := validateTargets(in.Targets); err != nil {
		return nil, err
	}

	setting, err := buildSetting(in.Setting)
	if err != nil {
		return nil, err
	}

	created, err := New(in.Targets, in.Type, setting, in.Enabled)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, created)
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateRule は既存の勤怠ルールを全項目置き換えで更新します。
func (s *Service) UpdateRule(ctx context.Context, in UpdateRuleInput) (*Rule, error) {
	ruleID, err := parseRuleID(in.RuleID)
	if err != nil {
		return nil, err
	}

	if err := validateTargets(in.Targets); err != nil {
		return nil, err
	}

	setting, err := buildSetting(in.Setting)
	if err != nil {
		return nil, err
	}

	var updated *Rule
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, ruleID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrRuleNotFound
		}

		replaced, err := Reconstruct(ruleID, in.Targets, in.Type, setting, in.Enabled)
		if err != nil {
			return err
		}

		if err := s.repo.Update(txCtx, replaced); err != nil {
			return err
		}
		updated = replaced
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteRule は勤怠ルールを削除します。
func (s *Service) DeleteRule(ctx context.Context, in DeleteRuleInput) error {
	ruleID, err := parseRuleID(in.RuleID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, ruleID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrRuleNotFound
		}
		return s.repo.Delete(txCtx, existing)
	})
}

// GetRule は勤怠ルールを取得します。
func (s *Service) GetRule(ctx context.Context, in GetRuleInput) (*Rule, error) {
	ruleID, err := parseRuleID(in.RuleID)
	if err != nil {
		return nil, err
	}

	var found *Rule
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, ruleID)
		if err != nil {
			return err
		}
		if result == nil {
			return ErrRuleNotFound
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

func parseRuleID(raw string) (identity.EntityID, error) {
	ruleID, err := identity.New(raw)
	if err != nil {
		return identity.EntityID{}, fmt.Errorf("%w: %v", ErrInvalidRuleID, err)
	}
	return ruleID, nil
}

func validateTargets(targets []TargetAction) error {
	for _, t := range targets {
		if !IsValidTargetAction(t) {
			return fmt.Errorf("%w: %s", ErrInvalidTargetAction, t)
		}
	}
	return nil
}

func buildSetting(in SettingInput) (Setting, error) {
	switch in.Type {
	case TypeAllowClockInOnlyBeforeTime:
		latest, err := ParseTimeOfDay(in.LatestClockInTime)
		if err != nil {
			return nil, err
		}
		return AllowClockInOnlyBeforeTime{LatestClockInTime: latest}, nil
	case TypeAllowClockOutOnlyAfterTime:
		earliest, err := ParseTimeOfDay(in.EarliestClockOutTime)
		if err != nil {
			return nil, err
		}
		return AllowClockOutOnlyAfterTime{EarliestClockOutTime: earliest}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRuleType, in.Type)
	}
}
