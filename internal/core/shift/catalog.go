package shift

import "context"

// Catalog はシフト定義の読み取り専用ルックアップです。
type Catalog interface {
	FindByID(ctx context.Context, id string) (*Shift, error)
	List(ctx context.Context) ([]*Shift, error)
}
