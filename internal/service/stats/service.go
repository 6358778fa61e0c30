// Package stats aggregates per-department workload figures for the
// admin dashboard.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

type userRepo interface {
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
}

type itemRepo interface {
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
}

// TeamStats is the aggregated workload of a single department.
type TeamStats struct {
	Department  string `json:"department"`
	MemberCount int    `json:"memberCount"`
	ItemCount   int    `json:"itemCount"`
}

// Overview sums the per-department figures.
type Overview struct {
	TotalUsers  int `json:"totalUsers"`
	TotalItems  int `json:"totalItems"`
	Departments int `json:"departments"`
}

type Service struct {
	users userRepo
	items itemRepo
	log   *slog.Logger
}

func NewService(log *slog.Logger, users userRepo, items itemRepo) *Service {
	return &Service{
		users: users,
		items: items,
		log:   log.With("service", "stats"),
	}
}

// TeamStats returns member and item counts per department, sorted by
// department name. Users and items without a department are excluded.
// Reserved to SUPER_ADMIN.
func (s *Service) TeamStats(ctx context.Context) ([]TeamStats, error) {
	if err := s.requireSuperAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, domain.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("stats.TeamStats: list users: %w", err)
	}
	items, err := s.items.List(ctx, domain.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("stats.TeamStats: list items: %w", err)
	}

	byDept := make(map[string]*TeamStats)
	team := func(dept string) *TeamStats {
		t, ok := byDept[dept]
		if !ok {
			t = &TeamStats{Department: dept}
			byDept[dept] = t
		}
		return t
	}
	for _, u := range users {
		if u.DepartmentID == nil || *u.DepartmentID == "" {
			continue
		}
		team(*u.DepartmentID).MemberCount++
	}
	for _, it := range items {
		if it.DepartmentID == nil || *it.DepartmentID == "" {
			continue
		}
		team(*it.DepartmentID).ItemCount++
	}

	out := make([]TeamStats, 0, len(byDept))
	for _, t := range byDept {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

// Overview returns system-wide totals. Reserved to SUPER_ADMIN.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if err := s.requireSuperAdmin(ctx); err != nil {
		return Overview{}, err
	}

	users, err := s.users.List(ctx, domain.UserFilter{})
	if err != nil {
		return Overview{}, fmt.Errorf("stats.Overview: list users: %w", err)
	}
	items, err := s.items.List(ctx, domain.ItemFilter{})
	if err != nil {
		return Overview{}, fmt.Errorf("stats.Overview: list items: %w", err)
	}

	depts := make(map[string]struct{})
	for _, u := range users {
		if u.DepartmentID != nil && *u.DepartmentID != "" {
			depts[*u.DepartmentID] = struct{}{}
		}
	}
	for _, it := range items {
		if it.DepartmentID != nil && *it.DepartmentID != "" {
			depts[*it.DepartmentID] = struct{}{}
		}
	}

	return Overview{
		TotalUsers:  len(users),
		TotalItems:  len(items),
		Departments: len(depts),
	}, nil
}

func (s *Service) requireSuperAdmin(ctx context.Context) error {
	identity, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if identity.Role != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	return nil
}
