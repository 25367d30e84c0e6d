// Package views holds the pure helpers screens compute from store state:
// search filters, grouping and the commission preview.
package views

import (
	"slices"
	"strings"
	"time"

	"github.com/hongminglow/ledgerdash/internal/models"
)

func matches(query string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// filter returns items unchanged for an empty query.
func filter[T any](items []T, query string, keep func(T, string) bool) []T {
	q := normalize(query)
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it, q) {
			out = append(out, it)
		}
	}
	return out
}

// FilterClients matches name or phone.
func FilterClients(clients []models.Client, query string) []models.Client {
	return filter(clients, query, func(c models.Client, q string) bool {
		return matches(q, c.Name, c.Phone)
	})
}

// FilterBranches matches name, code or address.
func FilterBranches(branches []models.Branch, query string) []models.Branch {
	return filter(branches, query, func(b models.Branch, q string) bool {
		return matches(q, b.Name, b.Code, b.Address)
	})
}

// SearchAssignableBranches is the branch search of the assignment screen:
// name, code or owning client name.
func SearchAssignableBranches(branches []models.Branch, query string) []models.Branch {
	return filter(branches, query, func(b models.Branch, q string) bool {
		return matches(q, b.Name, b.Code, b.Client.Name)
	})
}

// Assignment narrows the staff list.
type Assignment string

const (
	AllStaff        Assignment = "all"
	AssignedStaff   Assignment = "assigned"
	UnassignedStaff Assignment = "unassigned"
)

// FilterStaff matches name, phone or the name or code of any assigned
// branch, then applies the assignment filter.
func FilterStaff(staff []models.StaffMember, query string, which Assignment) []models.StaffMember {
	found := filter(staff, query, func(s models.StaffMember, q string) bool {
		if matches(q, s.Name, s.Phone) {
			return true
		}
		return slices.ContainsFunc(s.Branches, func(b models.Ref) bool { return matches(q, b.Name, b.Code) })
	})
	if which != AssignedStaff && which != UnassignedStaff {
		return found
	}
	out := make([]models.StaffMember, 0, len(found))
	for _, s := range found {
		if s.Assigned() == (which == AssignedStaff) {
			out = append(out, s)
		}
	}
	return out
}

// ClientBranches groups branches under their owning client.
type ClientBranches struct {
	Client   models.Ref
	Branches []models.Branch
}

// GroupBranchesByClient keeps first-seen client order. Branches with no
// client are grouped under an empty Ref.
func GroupBranchesByClient(branches []models.Branch) []ClientBranches {
	var groups []ClientBranches
	index := make(map[string]int)
	for _, b := range branches {
		i, seen := index[b.Client.ID]
		if !seen {
			i = len(groups)
			index[b.Client.ID] = i
			groups = append(groups, ClientBranches{Client: b.Client})
		}
		if groups[i].Client.Name == "" && b.Client.Name != "" {
			groups[i].Client = b.Client
		}
		groups[i].Branches = append(groups[i].Branches, b)
	}
	return groups
}

// TransactionFilter narrows a transaction list. Zero fields do not filter.
// From and To are calendar days, both inclusive.
type TransactionFilter struct {
	Type  models.TransactionType
	From  time.Time
	To    time.Time
	Query string
}

// FilterTransactions applies f. Query matches UTR id, remark, or the branch,
// client or staff name.
func FilterTransactions(txs []models.Transaction, f TransactionFilter) []models.Transaction {
	q := normalize(f.Query)
	var end time.Time
	if !f.To.IsZero() {
		y, m, d := f.To.Date()
		end = time.Date(y, m, d+1, 0, 0, 0, 0, f.To.Location())
	}
	var start time.Time
	if !f.From.IsZero() {
		y, m, d := f.From.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, f.From.Location())
	}

	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if !start.IsZero() && t.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !t.CreatedAt.Before(end) {
			continue
		}
		if q != "" && !matches(q, t.UTRID, t.Remark, t.Branch.Name, t.Client.Name, t.Staff.Name) {
			continue
		}
		out = append(out, t)
	}
	return out
}
