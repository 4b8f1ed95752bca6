package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/roles"
	"github.com/pulse-news/pulse/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	FindByLogin(ctx context.Context, login string) (User, error)
	UpdateProfile(ctx context.Context, user User) (User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetRole(ctx context.Context, id int64, role *string) error
	MarkLogin(ctx context.Context, id int64, ip string, at time.Time) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]User, int, error)
}

// RoleRegistry resolves role names to their capability grants.
type RoleRegistry interface {
	Resolve(ctx context.Context, name string) (roles.Role, error)
}

// ActivityRecorder appends entries to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action string, details map[string]any)
}

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ListResult bundles a page of accounts with pagination metadata.
type ListResult struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service handles account business logic.
type Service struct {
	repo     RepositoryPort
	roles    RoleRegistry
	recorder ActivityRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, registry RoleRegistry, recorder ActivityRecorder) *Service {
	return &Service{repo: repo, roles: registry, recorder: recorder}
}

// Register creates a new account with the default reader role.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return User{}, shared.ErrInvalidState
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	role := string(authz.RoleReader)
	user := User{
		Username:           username,
		Email:              email,
		PasswordHash:       string(hash),
		FirstName:          strings.TrimSpace(input.FirstName),
		LastName:           strings.TrimSpace(input.LastName),
		Role:               &role,
		Active:             true,
		EmailNotifications: true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return User{}, err
	}
	s.recorder.Record(ctx, created.ID, activity.ActionRegister, map[string]any{"username": created.Username})
	return created, nil
}

// Get returns a single account. Regular users may only fetch themselves.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id int64) (User, error) {
	if !actor.Authenticated {
		return User{}, shared.ErrPermissionDenied
	}
	if id != actor.ID && !actor.Privileged() && !actor.Has(authz.CapUserManage) {
		return User{}, shared.ErrPermissionDenied
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a partial profile update to the actor's account.
func (s *Service) UpdateProfile(ctx context.Context, actor authz.Actor, patch ProfilePatch) (User, error) {
	if !actor.Authenticated {
		return User{}, shared.ErrPermissionDenied
	}
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return User{}, err
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Bio != nil {
		user.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.EmailNotifications != nil {
		user.EmailNotifications = *patch.EmailNotifications
	}
	updated, err := s.repo.UpdateProfile(ctx, user)
	if err != nil {
		return User{}, err
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionProfileUpdate, nil)
	return updated, nil
}

// ChangePassword swaps the account password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, actor authz.Actor, current, next string) error {
	if !actor.Authenticated {
		return shared.ErrPermissionDenied
	}
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return shared.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, actor.ID, string(hash)); err != nil {
		return err
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionPasswordChange, nil)
	return nil
}

// Deactivate disables the actor's account after verifying the password.
func (s *Service) Deactivate(ctx context.Context, actor authz.Actor, password string) error {
	if !actor.Authenticated {
		return shared.ErrPermissionDenied
	}
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return shared.ErrInvalidCredentials
	}
	if err := s.repo.Deactivate(ctx, actor.ID); err != nil {
		return err
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionAccountDelete, nil)
	return nil
}

// List returns accounts for user managers.
func (s *Service) List(ctx context.Context, actor authz.Actor, page, perPage int) (ListResult, error) {
	if !actor.Privileged() && !actor.Has(authz.CapUserManage) {
		return ListResult{}, shared.ErrPermissionDenied
	}
	pagination := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.List(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Users: list, Pagination: shared.NewPagination(page, perPage, total)}, nil
}

// AssignRole changes an account's role. Only user managers may do this,
// and the role must exist in the registry.
func (s *Service) AssignRole(ctx context.Context, actor authz.Actor, userID int64, roleName string) (User, error) {
	if !actor.Privileged() && !actor.Has(authz.CapUserManage) {
		return User{}, shared.ErrPermissionDenied
	}
	var role *string
	if name := strings.ToLower(strings.TrimSpace(roleName)); name != "" {
		resolved, err := s.roles.Resolve(ctx, name)
		if err != nil {
			return User{}, err
		}
		role = &resolved.Name
	}
	if err := s.repo.SetRole(ctx, userID, role); err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, userID)
}

// MarkLogin stamps the last login time and source address.
func (s *Service) MarkLogin(ctx context.Context, userID int64, ip string) {
	_ = s.repo.MarkLogin(ctx, userID, ip, time.Now().UTC())
}

// ActorByID loads the authorization view of an account. Accounts without
// an explicit role act with the baseline reader grants.
func (s *Service) ActorByID(ctx context.Context, id int64) (authz.Actor, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Actor{}, err
	}
	if !user.Active {
		return authz.Actor{}, shared.ErrPermissionDenied
	}
	actor := authz.Actor{
		ID:            user.ID,
		Username:      user.Username,
		Staff:         user.Staff,
		Superuser:     user.Superuser,
		Authenticated: true,
	}
	if user.Role == nil {
		actor.Role = authz.RoleReader
		actor.Caps = authz.NewCapabilitySet(authz.DefaultGrants(authz.RoleReader)...)
		return actor, nil
	}
	role, err := s.roles.Resolve(ctx, *user.Role)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			actor.Role = authz.RoleReader
			actor.Caps = authz.NewCapabilitySet(authz.DefaultGrants(authz.RoleReader)...)
			return actor, nil
		}
		return authz.Actor{}, err
	}
	actor.Role = role.Name
	actor.Caps = role.CapabilitySet()
	return actor, nil
}
