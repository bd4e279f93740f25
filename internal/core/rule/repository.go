package rule

import (
	"context"

	"kintai/internal/core/identity"
)

// Repository は勤怠ルール永続化の抽象です。
// FindByID はルールが存在しない場合エラーではなく nil を返します。
type Repository interface {
	FindByID(ctx context.Context, ruleID identity.EntityID) (*Rule, error)
	FindAllEnabled(ctx context.Context) ([]*Rule, error)
	Create(ctx context.Context, rule *Rule) error
	Update(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, rule *Rule) error
}
