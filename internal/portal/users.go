package portal

import (
	"context"
	"io"

	"auditportal/internal/access"
	"auditportal/internal/ident"
	"auditportal/internal/resolve"
	"auditportal/internal/store"
	"auditportal/pkg/domain"
)

// Users is the staff registration facade.
type Users struct {
	*Collection[domain.User]
	codes ident.CodeGenerator
}

func newUsers(s *store.Store[domain.User], policy access.Policy, rand io.Reader) *Users {
	u := &Users{
		Collection: newCollection(s, policy),
		codes:      ident.CodeGenerator{Prefix: "EMP", Length: 6, Rand: rand},
	}
	u.preserve = func(stored, incoming domain.User) domain.User {
		incoming.EmployeeCode = stored.EmployeeCode
		return incoming
	}
	return u
}

// GenerateEmployeeCode returns a fresh EMP-prefixed code. It is not checked
// against existing staff.
func (u *Users) GenerateEmployeeCode() (string, error) {
	return u.codes.Generate()
}

// Add registers a staff member, generating an employee code when rec has
// none.
func (u *Users) Add(ctx context.Context, actor access.Actor, rec domain.User) (domain.User, error) {
	if err := u.policy.CanMutate(actor, u.Key()); err != nil {
		return domain.User{}, err
	}
	if rec.EmployeeCode == "" {
		code, err := u.GenerateEmployeeCode()
		if err != nil {
			return domain.User{}, err
		}
		rec.EmployeeCode = code
	}
	return u.Collection.Add(ctx, actor, rec)
}

// CurrentPosting resolves where u is posted now.
func (u *Users) CurrentPosting(user domain.User) resolve.Posting {
	return resolve.CurrentPosting(user)
}

// ByEmployeeCode finds the staff member holding code.
func (u *Users) ByEmployeeCode(ctx context.Context, code string) (domain.User, bool) {
	for _, rec := range u.List(ctx) {
		if rec.EmployeeCode == code {
			return rec, true
		}
	}
	return domain.User{}, false
}
