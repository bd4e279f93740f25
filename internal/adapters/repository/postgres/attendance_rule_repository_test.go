package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"kintai/internal/core/identity"
	"kintai/internal/core/rule"
)

const findAllEnabledRulesQuery = `
        SELECT id, targets, rule_type, setting, enabled
          FROM attendance_rules
         WHERE enabled
         ORDER BY id
    `

func buildClockInRule(t *testing.T, limit string, enabled bool) *rule.Rule {
	t.Helper()
	latest, err := rule.ParseTimeOfDay(limit)
	if err != nil {
		t.Fatalf("ParseTimeOfDay error: %v", err)
	}
	created, err := rule.New([]rule.TargetAction{rule.TargetClockIn}, rule.TypeAllowClockInOnlyBeforeTime, rule.AllowClockInOnlyBeforeTime{LatestClockInTime: latest}, enabled)
	if err != nil {
		t.Fatalf("rule.New error: %v", err)
	}
	return created
}

func TestAttendanceRuleRepository_FindAllEnabled(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRuleRepository(mock)
	ruleID := identity.Generate()

	mock.ExpectQuery(regexp.QuoteMeta(findAllEnabledRulesQuery)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "targets", "rule_type", "setting", "enabled"}).
			AddRow(ruleID.String(), []byte(`["CLOCK_IN"]`), string(rule.TypeAllowClockInOnlyBeforeTime), []byte(`{"type":"ALLOW_CLOCK_IN_ONLY_BEFORE_TIME","latestClockInTime":"10:00"}`), true))

	rules, err := repo.FindAllEnabled(context.Background())
	if err != nil {
		t.Fatalf("FindAllEnabled returned error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	setting, ok := rules[0].Setting().(rule.AllowClockInOnlyBeforeTime)
	if !ok {
		t.Fatalf("unexpected setting type %T", rules[0].Setting())
	}
	if got := setting.LatestClockInTime.String(); got != "10:00" {
		t.Errorf("expected 10:00, got %s", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRuleRepository_FindByID_Absent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRuleRepository(mock)
	ruleID := identity.Generate()

	mock.ExpectQuery(regexp.QuoteMeta(`
        SELECT id, targets, rule_type, setting, enabled
          FROM attendance_rules
         WHERE id = $1
         LIMIT 1
    `)).
		WithArgs(ruleID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "targets", "rule_type", "setting", "enabled"}))

	found, err := repo.FindByID(context.Background(), ruleID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for absent rule, got %+v", found)
	}
}

func TestAttendanceRuleRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRuleRepository(mock)
	created := buildClockInRule(t, "10:00", true)

	mock.ExpectExec(regexp.QuoteMeta(`
        INSERT INTO attendance_rules (id, targets, rule_type, setting, enabled, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, now(), now())
    `)).
		WithArgs(created.ID().String(), pgxmock.AnyArg(), string(rule.TypeAllowClockInOnlyBeforeTime), pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), created); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRuleRepository_Update_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRuleRepository(mock)
	updated := buildClockInRule(t, "09:30", false)

	mock.ExpectExec(regexp.QuoteMeta(`
        UPDATE attendance_rules
           SET targets = $1,
               rule_type = $2,
               setting = $3,
               enabled = $4,
               updated_at = now()
         WHERE id = $5
    `)).
		WithArgs(pgxmock.AnyArg(), string(rule.TypeAllowClockInOnlyBeforeTime), pgxmock.AnyArg(), false, updated.ID().String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Update(context.Background(), updated); !errors.Is(err, rule.ErrRuleNotFound) {
		t.Fatalf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestEncodeSetting_RoundTrip(t *testing.T) {
	t.Parallel()

	earliest, err := rule.ParseTimeOfDay("18:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay error: %v", err)
	}

	encoded, err := encodeSetting(rule.AllowClockOutOnlyAfterTime{EarliestClockOutTime: earliest})
	if err != nil {
		t.Fatalf("encodeSetting returned error: %v", err)
	}

	decoded, err := decodeSetting(encoded)
	if err != nil {
		t.Fatalf("decodeSetting returned error: %v", err)
	}

	setting, ok := decoded.(rule.AllowClockOutOnlyAfterTime)
	if !ok {
		t.Fatalf("unexpected setting type %T", decoded)
	}
	if got := setting.EarliestClockOutTime.String(); got != "18:30" {
		t.Errorf("expected 18:30, got %s", got)
	}
}

func TestDecodeSetting_UnknownType(t *testing.T) {
	t.Parallel()

	if _, err := decodeSetting([]byte(`{"type":"MAX_DAILY_HOURS"}`)); err == nil {
		t.Fatal("expected error for unknown setting type")
	}
}
