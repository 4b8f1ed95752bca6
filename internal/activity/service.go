package activity

import (
	"context"
	"strings"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

// RepositoryPort defines data access methods for activity records.
type RepositoryPort interface {
	Insert(ctx context.Context, rec Record) error
	List(ctx context.Context, filters ListFilters) ([]Record, int, error)
}

// Result bundles a page of records with pagination metadata.
type Result struct {
	Records    []Record          `json:"records"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service coordinates activity log reads.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListFor returns activity records visible to the actor. Regular users
// only see their own history; user managers may inspect anyone's.
func (s *Service) ListFor(ctx context.Context, actor authz.Actor, filters ListFilters) (Result, error) {
	if !actor.Authenticated {
		return Result{}, shared.ErrPermissionDenied
	}
	if !actor.Privileged() && !actor.Has(authz.CapUserManage) {
		if filters.UserID != 0 && filters.UserID != actor.ID {
			return Result{}, shared.ErrPermissionDenied
		}
		filters.UserID = actor.ID
	}
	filters.Action = strings.TrimSpace(filters.Action)
	pagination := shared.NewPagination(filters.Page, filters.PerPage, 0)
	filters.Page = pagination.Page
	filters.PerPage = pagination.PerPage
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Records:    records,
		Pagination: shared.NewPagination(filters.Page, filters.PerPage, total),
	}, nil
}
