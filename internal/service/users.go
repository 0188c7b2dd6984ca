package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

var (
	ErrSelfDelete  = errors.New("cannot delete own account")
	ErrInvalidVote = errors.New("vote must be between 1 and 5")
)

// UserUpdate carries the optional fields of a profile update. Nil means
// leave the field untouched.
type UserUpdate struct {
	Email    *string
	Name     *string
	Password *string
	Role     *string
	Vote     *int
}

// UserService covers admin account management and self-service profile
// edits.
type UserService struct {
	store *storage.Store
}

func NewUserService(store *storage.Store) *UserService {
	return &UserService{store: store}
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.store.ListUsers(ctx)
}

// Delete removes an account by email. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, email string) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == actor.Email {
		return ErrSelfDelete
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, user.ID)
}

// Update edits an account. Admins may edit anyone; everyone may edit
// their own profile, except the role which stays admin-only.
func (s *UserService) Update(ctx context.Context, actor *domain.User, email string, upd UserUpdate) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	isAdmin := actor.HasRole(domain.RoleAdmin)
	if !isAdmin && actor.Email != email {
		return nil, ErrForbidden
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		next := strings.TrimSpace(strings.ToLower(*upd.Email))
		if _, err := mail.ParseAddress(next); err != nil {
			return nil, ErrInvalidEmail
		}
		user.Email = next
	}
	if upd.Name != nil && *upd.Name != "" {
		user.Name = *upd.Name
	}
	if upd.Password != nil {
		if len(*upd.Password) < 6 {
			return nil, ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if upd.Role != nil {
		if !isAdmin {
			return nil, ErrForbidden
		}
		if !domain.ValidRole(*upd.Role) {
			return nil, ErrInvalidRole
		}
		user.Roles = []string{*upd.Role}
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// SubmitVote records a satisfaction score for the caller's own account.
func (s *UserService) SubmitVote(ctx context.Context, actor *domain.User, email string, vote int) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if actor.Email != email {
		return nil, ErrForbidden
	}
	if vote < 1 || vote > 5 {
		return nil, ErrInvalidVote
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user.Vote = &vote
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
