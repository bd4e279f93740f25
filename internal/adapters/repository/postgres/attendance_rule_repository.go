package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kintai/internal/core/identity"
	"kintai/internal/core/rule"
	pgdb "kintai/internal/platform/db/postgres"
)

// AttendanceRuleRepository は PostgreSQL を利用した勤怠ルール永続化の実装です。
type AttendanceRuleRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRuleRepository は AttendanceRuleRepository を生成します。
func NewAttendanceRuleRepository(pool pgdb.Queryer) *AttendanceRuleRepository {
	return &AttendanceRuleRepository{pool: pool}
}

// settingJSON は setting カラム（jsonb）のワイヤ表現です。
// ルール種別ごとに使用するキーが異なります。
type settingJSON struct {
	Type                 string `json:"type"`
	LatestClockInTime    string `json:"latestClockInTime,omitempty"`
	EarliestClockOutTime string `json:"earliestClockOutTime,omitempty"`
}

// FindByID はIDで勤怠ルールを取得します。存在しない場合は nil を返します。
func (r *AttendanceRuleRepository) FindByID(ctx context.Context, ruleID identity.EntityID) (*rule.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, targets, rule_type, setting, enabled
          FROM attendance_rules
         WHERE id = $1
         LIMIT 1
    `, ruleID.String())

	found, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return found, nil
}

// FindAllEnabled は有効な勤怠ルールをすべて取得します。
func (r *AttendanceRuleRepository) FindAllEnabled(ctx context.Context) ([]*rule.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, targets, rule_type, setting, enabled
          FROM attendance_rules
         WHERE enabled
         ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*rule.Rule
	for rows.Next() {
		found, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, found)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}

// Create は勤怠ルールを新規作成します。
func (r *AttendanceRuleRepository) Create(ctx context.Context, created *rule.Rule) error {
	targets, setting, err := encodeRule(created)
	if err != nil {
		return err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err = exec.Exec(ctx, `
        INSERT INTO attendance_rules (id, targets, rule_type, setting, enabled, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, now(), now())
    `, created.ID().String(), targets, string(created.Type()), setting, created.Enabled())
	return err
}

// Update は勤怠ルールを全項目置き換えで更新します。
func (r *AttendanceRuleRepository) Update(ctx context.Context, updated *rule.Rule) error {
	targets, setting, err := encodeRule(updated)
	if err != nil {
		return err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE attendance_rules
           SET targets = $1,
               rule_type = $2,
               setting = $3,
               enabled = $4,
               updated_at = now()
         WHERE id = $5
    `, targets, string(updated.Type()), setting, updated.Enabled(), updated.ID().String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return rule.ErrRuleNotFound
	}
	return nil
}

// Delete は勤怠ルールを削除します。
func (r *AttendanceRuleRepository) Delete(ctx context.Context, deleted *rule.Rule) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM attendance_rules WHERE id = $1`, deleted.ID().String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return rule.ErrRuleNotFound
	}
	return nil
}

func scanRule(row pgx.Row) (*rule.Rule, error) {
	var (
		id         string
		rawTargets []byte
		ruleType   string
		rawSetting []byte
		enabled    bool
	)

	if err := row.Scan(&id, &rawTargets, &ruleType, &rawSetting, &enabled); err != nil {
		return nil, err
	}

	ruleID, err := identity.Reconstruct(id)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid rule id %s: %w", id, err)
	}

	var targetNames []string
	if err := json.Unmarshal(rawTargets, &targetNames); err != nil {
		return nil, fmt.Errorf("postgres: decode rule targets: %w", err)
	}
	targets := make([]rule.TargetAction, 0, len(targetNames))
	for _, name := range targetNames {
		targets = append(targets, rule.TargetAction(name))
	}

	setting, err := decodeSetting(rawSetting)
	if err != nil {
		return nil, err
	}

	return rule.Reconstruct(ruleID, targets, rule.Type(ruleType), setting, enabled)
}

func encodeRule(r *rule.Rule) (targets, setting []byte, err error) {
	targetNames := make([]string, 0, len(r.Targets()))
	for _, t := range r.Targets() {
		targetNames = append(targetNames, string(t))
	}
	targets, err = json.Marshal(targetNames)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: encode rule targets: %w", err)
	}

	setting, err = encodeSetting(r.Setting())
	if err != nil {
		return nil, nil, err
	}
	return targets, setting, nil
}

func encodeSetting(s rule.Setting) ([]byte, error) {
	var wire settingJSON
	switch typed := s.(type) {
	case rule.AllowClockInOnlyBeforeTime:
		wire = settingJSON{Type: string(typed.SettingType()), LatestClockInTime: typed.LatestClockInTime.String()}
	case rule.AllowClockOutOnlyAfterTime:
		wire = settingJSON{Type: string(typed.SettingType()), EarliestClockOutTime: typed.EarliestClockOutTime.String()}
	default:
		return nil, fmt.Errorf("postgres: unsupported rule setting type %T", s)
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode rule setting: %w", err)
	}
	return encoded, nil
}

func decodeSetting(raw []byte) (rule.Setting, error) {
	var wire settingJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("postgres: decode rule setting: %w", err)
	}

	switch rule.Type(wire.Type) {
	case rule.TypeAllowClockInOnlyBeforeTime:
		latest, err := rule.ParseTimeOfDay(wire.LatestClockInTime)
		if err != nil {
			return nil, fmt.Errorf("postgres: decode rule setting: %w", err)
		}
		return rule.AllowClockInOnlyBeforeTime{LatestClockInTime: latest}, nil
	case rule.TypeAllowClockOutOnlyAfterTime:
		earliest, err := rule.ParseTimeOfDay(wire.EarliestClockOutTime)
		if err != nil {
			return nil, fmt.Errorf("postgres: decode rule setting: %w", err)
		}
		return rule.AllowClockOutOnlyAfterTime{EarliestClockOutTime: earliest}, nil
	default:
		return nil, fmt.Errorf("postgres: unknown rule setting type %s", wire.Type)
	}
}
