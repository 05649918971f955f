package shift

// Type はシフト区分を表します。
type Type string

const (
	TypeMorning   Type = "morning"
	TypeAfternoon Type = "afternoon"
	TypeEvening   Type = "evening"
	TypeNight     Type = "night"
)

// IsValid は既知のシフト区分かどうかを返します。
func (t Type) IsValid() bool {
	switch t {
	case TypeMorning, TypeAfternoon, TypeEvening, TypeNight:
		return true
	default:
		return false
	}
}

// Shift はシフト定義エンティティです。参照専用のマスタデータであり、変更されません。
type Shift struct {
	ID        string
	Type      Type
	StartTime string
	EndTime   string
	RoomID    string
}
