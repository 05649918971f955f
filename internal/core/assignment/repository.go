package assignment

import (
	"context"
	"time"
)

// Repository は割当永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, a *Assignment) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) (*Assignment, error)
	FindByID(ctx context.Context, id string) (*Assignment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Assignment, error)
	// ListOverlapping は有効期間が [from, to] と交差する割当を返します。
	ListOverlapping(ctx context.Context, doctorID string, from, to time.Time) ([]*Assignment, error)
	// ExistsOverlapping は同一シフトへの活性な割当で期間が交差するものの有無を返します。
	// 非活性化済みの割当は衝突と見なしません。
	ExistsOverlapping(ctx context.Context, doctorID, shiftID string, from, to time.Time) (bool, error)
}
