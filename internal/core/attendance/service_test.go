package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"kintai/internal/core/identity"
	"kintai/internal/core/rule"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type recordKey struct {
	userID   string
	workDate string
}

type fakeRecordRepo struct {
	records map[recordKey]*Record
	saved   int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[recordKey]*Record)}
}

func (r *fakeRecordRepo) key(userID identity.EntityID, workDate time.Time) recordKey {
	return recordKey{userID: userID.String(), workDate: workDate.Format("2006-01-02")}
}

func (r *fakeRecordRepo) FindByUserIDAndWorkDate(_ context.Context, userID identity.EntityID, workDate time.Time) (*Record, error) {
	record, ok := r.records[r.key(userID, workDate)]
	if !ok {
		return nil, nil
	}
	return record, nil
}

func (r *fakeRecordRepo) Save(_ context.Context, record *Record) error {
	r.records[r.key(record.UserID(), record.WorkDate())] = record
	r.saved++
	return nil
}

type fakeRuleRepo struct {
	rules []*rule.Rule
}

func (r *fakeRuleRepo) FindByID(_ context.Context, ruleID identity.EntityID) (*rule.Rule, error) {
	for _, candidate := range r.rules {
		if candidate.ID() == ruleID {
			return candidate, nil
		}
	}
	return nil, nil
}

func (r *fakeRuleRepo) FindAllEnabled(_ context.Context) ([]*rule.Rule, error) {
	var enabled []*rule.Rule
	for _, candidate := range r.rules {
		if candidate.Enabled() {
			enabled = append(enabled, candidate)
		}
	}
	return enabled, nil
}

func (r *fakeRuleRepo) Create(_ context.Context, created *rule.Rule) error {
	r.rules = append(r.rules, created)
	return nil
}

func (r *fakeRuleRepo) Update(_ context.Context, _ *rule.Rule) error {
	return nil
}

func (r *fakeRuleRepo) Delete(_ context.Context, _ *rule.Rule) error {
	return nil
}

func mustTimeOfDay(t *testing.T, raw string) rule.TimeOfDay {
	t.Helper()
	parsed, err := rule.ParseTimeOfDay(raw)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) error: %v", raw, err)
	}
	return parsed
}

func clockInDeadlineRule(t *testing.T, limit string, enabled bool) *rule.Rule {
	t.Helper()
	created, err := rule.New(
		[]rule.TargetAction{rule.TargetClockIn},
		rule.TypeAllowClockInOnlyBeforeTime,
		rule.AllowClockInOnlyBeforeTime{LatestClockInTime: mustTimeOfDay(t, limit)},
		enabled,
	)
	if err != nil {
		t.Fatalf("rule.New error: %v", err)
	}
	return created
}

func clockOutFloorRule(t *testing.T, limit string, enabled bool) *rule.Rule {
	t.Helper()
	created, err := rule.New(
		[]rule.TargetAction{rule.TargetClockOut},
		rule.TypeAllowClockOutOnlyAfterTime,
		rule.AllowClockOutOnlyAfterTime{EarliestClockOutTime: mustTimeOfDay(t, limit)},
		enabled,
	)
	if err != nil {
		t.Fatalf("rule.New error: %v", err)
	}
	return created
}

func TestService_ClockIn_CreatesRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	svc := NewService(repo, &fakeRuleRepo{}, stubClock{now: at(9, 0)}, nil)
	userID := identity.Generate()

	err := svc.ClockIn(context.Background(), PunchInput{
		UserID:     userID.String(),
		WorkDate:   workDate(),
		OccurredAt: at(9, 0),
	})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	record, err := svc.GetRecord(context.Background(), GetRecordInput{UserID: userID.String(), WorkDate: workDate()})
	if err != nil {
		t.Fatalf("GetRecord returned error: %v", err)
	}
	if got := record.Status(); got != StatusWorking {
		t.Fatalf("expected WORKING, got %s", got)
	}
}

func TestService_ClockIn_NormalizesWorkDate(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	svc := NewService(repo, &fakeRuleRepo{}, stubClock{now: at(9, 0)}, nil)
	userID := identity.Generate()

	// 時刻付きの workDate はUTC深夜0時に正規化されて同じ記録に解決される
	noonOfDay := at(12, 34)
	if err := svc.ClockIn(context.Background(), PunchInput{UserID: userID.String(), WorkDate: noonOfDay, OccurredAt: at(9, 0)}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	if _, err := svc.GetRecord(context.Background(), GetRecordInput{UserID: userID.String(), WorkDate: workDate()}); err != nil {
		t.Fatalf("GetRecord returned error: %v", err)
	}
}

func TestService_ClockIn_RejectedByRule(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	rules := &fakeRuleRepo{rules: []*rule.Rule{clockInDeadlineRule(t, "10:00", true)}}
	svc := NewService(repo, rules, stubClock{now: at(10, 1)}, nil)
	userID := identity.Generate()

	err := svc.ClockIn(context.Background(), PunchInput{
		UserID:     userID.String(),
		WorkDate:   workDate(),
		OccurredAt: at(10, 1),
	})

	var windowErr *rule.ClockInWindowError
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected ClockInWindowError, got %v", err)
	}
	if got := windowErr.Error(); got != "出勤打刻は10:00までです" {
		t.Errorf("unexpected error message: %s", got)
	}
	if repo.saved != 0 {
		t.Errorf("expected no save when rule rejects, got %d", repo.saved)
	}
}

func TestService_ClockIn_BoundaryAllowed(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	rules := &fakeRuleRepo{rules: []*rule.Rule{clockInDeadlineRule(t, "10:00", true)}}
	svc := NewService(repo, rules, stubClock{now: at(10, 0)}, nil)
	userID := identity.Generate()

	err := svc.ClockIn(context.Background(), PunchInput{
		UserID:     userID.String(),
		WorkDate:   workDate(),
		OccurredAt: at(10, 0),
	})
	if err != nil {
		t.Fatalf("expected boundary time to be allowed, got %v", err)
	}
}

func TestService_ClockIn_DisabledRuleIgnored(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	rules := &fakeRuleRepo{rules: []*rule.Rule{clockInDeadlineRule(t, "10:00", false)}}
	svc := NewService(repo, rules, stubClock{now: at(11, 0)}, nil)
	userID := identity.Generate()

	err := svc.ClockIn(context.Background(), PunchInput{
		UserID:     userID.String(),
		WorkDate:   workDate(),
		OccurredAt: at(11, 0),
	})
	if err != nil {
		t.Fatalf("expected disabled rule to be ignored, got %v", err)
	}
}

func TestService_ClockOut_RejectedByRule(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	rules := &fakeRuleRepo{rules: []*rule.Rule{clockOutFloorRule(t, "18:00", true)}}
	svc := NewService(repo, rules, stubClock{now: at(9, 0)}, nil)
	userID := identity.Generate()

	if err := svc.ClockIn(context.Background(), PunchInput{UserID: userID.String(), WorkDate: workDate(), OccurredAt: at(9, 0)}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	err := svc.ClockOut(context.Background(), PunchInput{
		UserID:     userID.String(),
		WorkDate:   workDate(),
		OccurredAt: at(17, 59),
	})

	var windowErr *rule.ClockOutWindowError
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected ClockOutWindowError, got %v", err)
	}
	if got := windowErr.Error(); got != "退勤打刻は18:00以降に可能です" {
		t.Errorf("unexpected error message: %s", got)
	}
}

func TestService_ClockOut_RecordNotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRecordRepo(), &fakeRuleRepo{}, nil, nil)
	userID := identity.Generate()

	err := svc.ClockOut(context.Background(), PunchInput{
		UserID:     userID.String(),
		WorkDate:   workDate(),
		OccurredAt: at(18, 0),
	})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestService_BreakCycle(t *testing.T) {
	t.Parallel()

	repo := newFakeRecordRepo()
	svc := NewService(repo, &fakeRuleRepo{}, nil, nil)
	userID := identity.Generate()

	if err := svc.ClockIn(context.Background(), PunchInput{UserID: userID.String(), WorkDate: workDate(), OccurredAt: at(9, 0)}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if err := svc.BreakStart(context.Background(), PunchInput{UserID: userID.String(), WorkDate: workDate(), OccurredAt: at(12, 0)}); err != nil {
		t.Fatalf("BreakStart returned error: %v", err)
	}
	if err := svc.BreakEnd(context.Background(), PunchInput{UserID: userID.String(), WorkDate: workDate(), OccurredAt: at(13, 0)}); err != nil {
		t.Fatalf("BreakEnd returned error: %v", err)
	}

	record, err := svc.GetRecord(context.Background(), GetRecordInput{UserID: userID.String(), WorkDate: workDate()})
	if err != nil {
		t.Fatalf("GetRecord returned error: %v", err)
	}
	if got := record.Status(); got != StatusWorking {
		t.Fatalf("expected WORKING after break cycle, got %s", got)
	}
}

func TestService_GetRecord_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRecordRepo(), &fakeRuleRepo{}, nil, nil)

	_, err := svc.GetRecord(context.Background(), GetRecordInput{UserID: identity.Generate().String(), WorkDate: workDate()})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestService_InvalidUserID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRecordRepo(), &fakeRuleRepo{}, nil, nil)

	err := svc.ClockIn(context.Background(), PunchInput{UserID: "not-a-ulid", WorkDate: workDate(), OccurredAt: at(9, 0)})
	if !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}
