package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
	"github.com/hongminglow/ledgerdash/internal/validate"
)

// FetchClients replaces the cached clients.
func (s *Store) FetchClients(ctx context.Context) error {
	return fetch(ctx, s, colClients, s.api.Clients,
		func(v []models.Client) { s.clients = v },
		func() { s.clients = nil })
}

// CreateClient validates and creates a client, then refetches the list.
func (s *Store) CreateClient(ctx context.Context, req dto.CreateClientRequest) Result {
	req.Phone = validate.NormalizePhone(req.Phone)
	if err := validate.Struct(req); err != nil {
		return fail(err, "")
	}
	if err := s.api.CreateClient(ctx, req); err != nil {
		return fail(err, "Failed to create client")
	}
	_ = s.FetchClients(ctx)
	return ok("Client created successfully", nil)
}

// DeleteClient deletes a client, then refetches the list.
func (s *Store) DeleteClient(ctx context.Context, id string) Result {
	if err := s.api.DeleteClient(ctx, id); err != nil {
		return fail(err, "Failed to delete client")
	}
	_ = s.FetchClients(ctx)
	return ok("Client deleted successfully", nil)
}

// FetchBranches replaces the cached branches.
func (s *Store) FetchBranches(ctx context.Context) error {
	return fetch(ctx, s, colBranches, s.api.Branches,
		func(v []models.Branch) { s.branches = v },
		func() { s.branches = nil })
}

// CreateBranch upper-cases the branch code before submitting.
func (s *Store) CreateBranch(ctx context.Context, req dto.CreateBranchRequest) Result {
	req.Code = validate.NormalizeCode(req.Code)
	if err := validate.Struct(req); err != nil {
		return fail(err, "")
	}
	if err := s.api.CreateBranch(ctx, req); err != nil {
		return fail(err, "Failed to create branch")
	}
	_ = s.FetchBranches(ctx)
	return ok("Branch created successfully", nil)
}

// DeleteBranch deletes a branch, then refetches the list.
func (s *Store) DeleteBranch(ctx context.Context, id string) Result {
	if err := s.api.DeleteBranch(ctx, id); err != nil {
		return fail(err, "Failed to delete branch")
	}
	_ = s.FetchBranches(ctx)
	return ok("Branch deleted successfully", nil)
}

// BranchStaff looks up the staff assigned to one branch. The result is not
// cached.
func (s *Store) BranchStaff(ctx context.Context, branchID string) Result {
	staff, err := s.api.BranchStaff(ctx, branchID)
	if err != nil {
		return fail(err, "Failed to load branch staff")
	}
	return ok("", staff)
}

// FetchStaff replaces the cached staff members.
func (s *Store) FetchStaff(ctx context.Context) error {
	return fetch(ctx, s, colStaff, s.api.Staff,
		func(v []models.StaffMember) { s.staff = v },
		func() { s.staff = nil })
}

// UnassignedStaff looks up staff with no branch. The result is not cached.
func (s *Store) UnassignedStaff(ctx context.Context) Result {
	staff, err := s.api.UnassignedStaff(ctx)
	if err != nil {
		return fail(err, "Failed to load unassigned staff")
	}
	return ok("", staff)
}

// CreateStaff validates and creates a staff member, then refetches the list.
func (s *Store) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) Result {
	req.Phone = validate.NormalizePhone(req.Phone)
	if err := validate.Struct(req); err != nil {
		return fail(err, "")
	}
	if err := s.api.CreateStaff(ctx, req); err != nil {
		return fail(err, "Failed to create staff")
	}
	_ = s.FetchStaff(ctx)
	return ok("Staff created successfully", nil)
}

// DeleteStaff deletes a staff member, then refetches the list.
func (s *Store) DeleteStaff(ctx context.Context, id string) Result {
	if err := s.api.DeleteStaff(ctx, id); err != nil {
		return fail(err, "Failed to delete staff")
	}
	_ = s.FetchStaff(ctx)
	return ok("Staff deleted successfully", nil)
}

// AssignStaffToBranches replaces the staff member's branch set with
// branchIDs. It is not additive.
func (s *Store) AssignStaffToBranches(ctx context.Context, staffID string, branchIDs []string) Result {
	req := dto.AssignBranchesRequest{BranchIDs: branchIDs}
	if err := validate.Struct(req); err != nil {
		return fail(err, "")
	}
	if err := s.api.AssignStaffBranches(ctx, staffID, branchIDs); err != nil {
		return fail(err, "Failed to assign branches")
	}
	_ = s.FetchStaff(ctx)
	return ok("Branches assigned successfully", nil)
}

// RemoveStaffFromBranch unassigns a branch, then refetches staff.
func (s *Store) RemoveStaffFromBranch(ctx context.Context, staffID, branchID string) Result {
	if err := s.api.RemoveStaffFromBranch(ctx, staffID, branchID); err != nil {
		return fail(err, "Failed to remove staff from branch")
	}
	_ = s.FetchStaff(ctx)
	return ok("Staff removed from branch", nil)
}

// FetchSettings loads system settings. On failure the preview falls back to
// the configured commission rate.
func (s *Store) FetchSettings(ctx context.Context) error {
	return fetch(ctx, s, colSettings, s.api.Settings,
		func(v models.Settings) { s.settings = &v },
		func() { s.settings = nil })
}

// UpdateSettings validates and saves the settings, caching the server's copy.
func (s *Store) UpdateSettings(ctx context.Context, settings models.Settings) Result {
	if err := validate.Struct(settings); err != nil {
		return fail(err, "")
	}
	saved, err := s.api.UpdateSettings(ctx, settings)
	if err != nil {
		return fail(err, "Failed to update settings")
	}

	s.mu.Lock()
	s.touch(colSettings)
	s.settings = &saved
	s.mu.Unlock()

	s.logger.Info("settings updated", zap.String("commission_rate", saved.CommissionRate.String()))
	return ok("Settings updated successfully", saved)
}
