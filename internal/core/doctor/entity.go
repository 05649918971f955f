package doctor

import "time"

// Status は医師の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Doctor は医師エンティティです。
type Doctor struct {
	ID        string
	Name      string
	Specialty string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
