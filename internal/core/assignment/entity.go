package assignment

import "time"

// Status は割当の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Assignment は医師のシフト割当エンティティです。
// EffectiveFrom と EffectiveTo はいずれも日付単位・両端含む有効期間で、
// EffectiveTo が nil の場合は無期限を意味します。
// 割当は削除されず、非活性化のみ行われます。
type Assignment struct {
	ID            string
	DoctorID      string
	ShiftID       string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OverlapsWindow は割当の有効期間が [from, to] と交差するかを返します。
func (a *Assignment) OverlapsWindow(from, to time.Time) bool {
	if a.EffectiveFrom.After(to) {
		return false
	}
	if a.EffectiveTo != nil && a.EffectiveTo.Before(from) {
		return false
	}
	return true
}
