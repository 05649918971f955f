package exchange

import (
	"context"
	"time"
)

// Repository は交換申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, r *Request) (*Request, error)
	// Update は審査結果を反映します。Pending の申請だけを遷移させ、既に審査済みの
	// 場合は ErrRequestNotPending を返します。
	Update(ctx context.Context, r *Request) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	// ListByDoctor は doctorID が申請者側・相手側いずれかに現れる申請を返します。
	ListByDoctor(ctx context.Context, doctorID string) ([]*Request, error)
	// ExistsPending は同一の医師ペアと交換日で Pending の申請が存在するかを返します。
	// ペアの並び順は区別しません。counterpartDoctorID は相手未確定の場合空文字列です。
	ExistsPending(ctx context.Context, doctorID, counterpartDoctorID string, date time.Time) (bool, error)
	// ListApprovedTemporary は指定割当がどちらかの側に使われている承認済み一時交換のうち、
	// 交換日が [from, to] に含まれるものを交換日昇順で返します。
	ListApprovedTemporary(ctx context.Context, assignmentID string, from, to time.Time) ([]*Request, error)
}
