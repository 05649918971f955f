package doctor

import "context"

// Directory は医師情報の参照ポートです。診療科の照会は交換申請の適格性判断に利用されます。
type Directory interface {
	FindByID(ctx context.Context, id string) (*Doctor, error)
	GetSpecialty(ctx context.Context, id string) (string, error)
}
