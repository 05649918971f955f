package schedule

import (
	"time"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
)

// Entry は投影結果の 1 区間を表します。EffectiveFrom と EffectiveTo は両端含む
// 日付区間で、問い合わせ範囲内に収まるよう切り詰められています。
type Entry struct {
	ShiftID       string
	ShiftType     shift.Type
	StartTime     string
	EndTime       string
	EffectiveFrom time.Time
	EffectiveTo   time.Time
	Status        assignment.Status
}
