package exchange

import "time"

// SwapType は交換の種別を表します。
type SwapType string

const (
	// SwapTypeTemporary は交換日当日のみ有効な交換です。割当自体は変更されません。
	SwapTypeTemporary SwapType = "temporary"
	// SwapTypePermanent は翌月一日以降有効な恒久的な交換です。承認時に両割当が書き換わります。
	SwapTypePermanent SwapType = "permanent"
)

// IsValid は既知の交換種別かどうかを返します。
func (t SwapType) IsValid() bool {
	switch t {
	case SwapTypeTemporary, SwapTypePermanent:
		return true
	default:
		return false
	}
}

// Status は交換申請の状態を表します。Pending から Approved または Rejected へ
// ちょうど一度だけ遷移し、以後は変更されません。
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision は審査の判定を表します。
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Counterpart は交換相手側の参照です。相手が未確定の申請では Request.Counterpart が
// nil になります。OldShiftID は申請時点の相手割当のシフト ID スナップショットです。
type Counterpart struct {
	DoctorID     string
	AssignmentID string
	OldShiftID   string
}

// Request は交換申請エンティティです。OldShiftID と Counterpart.OldShiftID は
// 申請時点のスナップショットで、後の割当変更に影響されない監査記録です。
type Request struct {
	ID           string
	DoctorID     string
	AssignmentID string
	OldShiftID   string
	Counterpart  *Counterpart
	SwapType     SwapType
	ExchangeDate time.Time
	Status       Status
	ReviewerID   string
	ReviewNote   string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ParticipatesVia は指定した割当 ID がこの申請のどちらかの側に使われているかを返します。
func (r *Request) ParticipatesVia(assignmentID string) bool {
	if r.AssignmentID == assignmentID {
		return true
	}
	return r.Counterpart != nil && r.Counterpart.AssignmentID == assignmentID
}

// SwappedShiftID は assignmentID 側から見た交換当日のシフト ID を返します。
// 相手側の参照が欠けている場合は ok=false を返し、呼び出し側は元のシフトへ
// フォールバックします。
func (r *Request) SwappedShiftID(assignmentID string) (string, bool) {
	if r.AssignmentID == assignmentID {
		if r.Counterpart == nil || r.Counterpart.OldShiftID == "" {
			return "", false
		}
		return r.Counterpart.OldShiftID, true
	}
	if r.Counterpart != nil && r.Counterpart.AssignmentID == assignmentID {
		if r.OldShiftID == "" {
			return "", false
		}
		return r.OldShiftID, true
	}
	return "", false
}
