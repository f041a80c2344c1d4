// Package auth resolves principal roles and permissions. Every query is
// total and fail-closed: an unknown principal gets false / an empty set,
// never an error, so denials are indistinguishable from lookup misses.
package auth

import (
	"sync"

	"crowd-safety-service/internal/models"
)

// rolePermissions is the fixed role→permission table, built once and never
// mutated at runtime.
var rolePermissions = map[models.Role][]models.Permission{
	models.RoleSuperAdmin: {
		models.PermViewOnly,
		models.PermViewAnalytics,
		models.PermAcknowledgeAlert,
		models.PermActivateEmergency,
		models.PermManageUsers,
	},
	models.RoleSafetyAdmin: {
		models.PermViewOnly,
		models.PermViewAnalytics,
		models.PermAcknowledgeAlert,
		models.PermActivateEmergency,
	},
	models.RoleMonitorOnly: {
		models.PermViewOnly,
	},
}

// RolePermissions returns the permission set for a role, empty for an
// unknown role.
func RolePermissions(role models.Role) []models.Permission {
	perms := rolePermissions[role]
	out := make([]models.Permission, len(perms))
	copy(out, perms)
	return out
}

// Service answers authorization queries for registered principals.
// Accounts are created by the portal; the service only holds a read-mostly
// snapshot of them.
type Service struct {
	mu         sync.RWMutex
	principals map[string]models.Principal
}

func New(principals []models.Principal) *Service {
	s := &Service{principals: make(map[string]models.Principal, len(principals))}
	for _, p := range principals {
		s.principals[p.ID] = p
	}
	return s
}

// Register adds or replaces a principal snapshot, used when the portal
// pushes account updates.
func (s *Service) Register(p models.Principal) {
	s.mu.Lock()
	s.principals[p.ID] = p
	s.mu.Unlock()
}

// CheckPermission reports whether the principal holds the permission.
// Unknown principals have no permissions.
func (s *Service) CheckPermission(principalID string, perm models.Permission) bool {
	s.mu.RLock()
	p, ok := s.principals[principalID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	for _, granted := range rolePermissions[p.Role] {
		if granted == perm {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal holds exactly the given role.
func (s *Service) HasRole(principalID string, role models.Role) bool {
	s.mu.RLock()
	p, ok := s.principals[principalID]
	s.mu.RUnlock()
	return ok && p.Role == role
}

// UserPermissions returns the principal's permission set, empty when the
// principal is unknown.
func (s *Service) UserPermissions(principalID string) []models.Permission {
	s.mu.RLock()
	p, ok := s.principals[principalID]
	s.mu.RUnlock()
	if !ok {
		return []models.Permission{}
	}
	return RolePermissions(p.Role)
}
