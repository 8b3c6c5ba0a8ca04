package member

import (
	"context"
	"errors"
	"testing"

	"member-tracker-go/internal/domain/apperror"
)

type fakeMemberRepo struct {
	nextID  uint
	members map[uint]*Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[uint]*Member)}
}

func (r *fakeMemberRepo) GetMember(ctx context.Context, id uint) (*Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, ErrMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMemberRepo) GetMemberByEmail(ctx context.Context, email string) (*Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) ListMembersByIDs(ctx context.Context, ids []uint) ([]Member, error) {
	result := make([]Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.members[id]; ok {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *fakeMemberRepo) CreateMember(ctx context.Context, m *Member) error {
	for _, existing := range r.members {
		if existing.Email == m.Email {
			return ErrEmailTaken
		}
	}
	r.nextID++
	m.ID = r.nextID
	copied := *m
	r.members[m.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) UpdateMember(ctx context.Context, m *Member) error {
	copied := *m
	r.members[m.ID] = &copied
	return nil
}

func TestGetMemberByUsernameMissingIsNil(t *testing.T) {
	svc := NewService(newFakeMemberRepo())

	m, err := svc.GetMemberByUsername(context.Background(), "new@rit.edu")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil member, got %+v", m)
	}
}

func TestCheckNewUserCreatesMemberWithNameAndEmailOnly(t *testing.T) {
	repo := newFakeMemberRepo()
	svc := NewService(repo)
	ctx := context.Background()

	check, err := svc.CheckNewUser(ctx, IdentityInput{Name: "New Person", Email: "New@RIT.edu"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !check.IsNewUser {
		t.Fatalf("expected new user")
	}
	if check.Member.Name != "New Person" || check.Member.Email != "new@rit.edu" {
		t.Fatalf("unexpected member %+v", check.Member)
	}
	if check.Member.Major != "" || check.Member.Status != "" || check.Member.GraduationDate != nil {
		t.Fatalf("expected only name and email set, got %+v", check.Member)
	}

	again, err := svc.CheckNewUser(ctx, IdentityInput{Name: "New Person", Email: "new@rit.edu"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again.IsNewUser {
		t.Fatalf("expected existing user on second check")
	}
	if again.Member.ID != check.Member.ID {
		t.Fatalf("expected same member id, got %d and %d", again.Member.ID, check.Member.ID)
	}
	if len(repo.members) != 1 {
		t.Fatalf("expected one member, got %d", len(repo.members))
	}
}

func TestCheckNewUserRejectsBadEmail(t *testing.T) {
	svc := NewService(newFakeMemberRepo())

	_, err := svc.CheckNewUser(context.Background(), IdentityInput{Name: "X", Email: "not-an-email"})
	if apperror.KindOf(err) != apperror.InvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUpdateMissingMember(t *testing.T) {
	svc := NewService(newFakeMemberRepo())
	major := "Computer Science"

	_, err := svc.Update(context.Background(), 7, UpdateInput{Major: &major})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestUpdateValidatesStatus(t *testing.T) {
	repo := newFakeMemberRepo()
	svc := NewService(repo)
	ctx := context.Background()
	check, _ := svc.CheckNewUser(ctx, IdentityInput{Name: "A", Email: "a@rit.edu"})

	bad := Status("wizard")
	if _, err := svc.Update(ctx, check.Member.ID, UpdateInput{Status: &bad}); apperror.KindOf(err) != apperror.InvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}

	good := StatusAlumni
	updated, err := svc.Update(ctx, check.Member.ID, UpdateInput{Status: &good})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Status != StatusAlumni {
		t.Fatalf("expected alumni, got %s", updated.Status)
	}
}
