package rule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat は "HH:MM" として解釈できない時刻文字列に返却されます。
var ErrInvalidTimeFormat = errors.New("不正な時刻形式です")

// TimeOfDay は日付を持たない時分（"HH:MM"）を表します。
// ルール判定は暦日を無視し、打刻時刻の時分のみと比較します。
type TimeOfDay struct {
	hour   int
	minute int
}

// ParseTimeOfDay は "HH:MM"（0<=H<=23, 0<=M<=59）を解析します。
// "24:00" のような範囲外の値も不正とします。
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, raw)
	}

	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, raw)
	}

	return TimeOfDay{hour: hour, minute: minute}, nil
}

// Minutes は0時からの経過分を返します。
func (t TimeOfDay) Minutes() int {
	return t.hour*60 + t.minute
}

// String は "HH:MM" 形式で返します。
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

func minutesOfDay(at time.Time) int {
	return at.Hour()*60 + at.Minute()
}

// isBeforeOrEqual は at の時分が limit 以前（同時刻含む）かどうかを返します。
func isBeforeOrEqual(at time.Time, limit TimeOfDay) bool {
	return minutesOfDay(at) <= limit.Minutes()
}

// isAfterOrEqual は at の時分が limit 以降（同時刻含む）かどうかを返します。
func isAfterOrEqual(at time.Time, limit TimeOfDay) bool {
	return minutesOfDay(at) >= limit.Minutes()
}
