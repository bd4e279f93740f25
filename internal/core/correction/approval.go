package correction

import (
	"fmt"

	"kintai/internal/core/attendance"
	"kintai/internal/core/punch"
)

// Approval は承認済みの修正内容を勤怠記録へ反映する、集約をまたぐ
// 調整役です。永続化や外部I/Oは行わず、状態遷移の正当性チェックは
// すべて AttendanceRecord 側に委譲します。承認内容が記録の現在状態と
// 矛盾する場合は InvalidStateError がそのまま呼び出し元へ伝播します。
type Approval struct{}

// ApplyApprovedPunches は承認済み打刻を順番に勤怠記録へ反映します。
//
// 反映された打刻は現状 source=NORMAL として記録されます。修正由来であることを
// 示す source=CORRECTION + sourceId を付ける方が PunchEvent の不変条件の意図に
// 沿うが、既存システムの挙動を保存するため据え置いています。
func (Approval) ApplyApprovedPunches(record *attendance.Record, approvedPunches []Punch) error {
	for _, p := range approvedPunches {
		var err error
		switch p.PunchType {
		case punch.TypeClockIn:
			err = record.ClockIn(p.OccurredAt)
		case punch.TypeClockOut:
			err = record.ClockOut(p.OccurredAt)
		case punch.TypeBreakStart:
			err = record.BreakStart(p.OccurredAt)
		case punch.TypeBreakEnd:
			err = record.BreakEnd(p.OccurredAt)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownPunchType, p.PunchType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
