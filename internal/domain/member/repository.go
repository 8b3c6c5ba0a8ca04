package member

import "context"

type Repository interface {
	GetMember(ctx context.Context, id uint) (*Member, error)
	// GetMemberByEmail returns nil, nil when no member has the address.
	GetMemberByEmail(ctx context.Context, email string) (*Member, error)
	ListMembersByIDs(ctx context.Context, ids []uint) ([]Member, error)
	CreateMember(ctx context.Context, m *Member) error
	UpdateMember(ctx context.Context, m *Member) error
}
