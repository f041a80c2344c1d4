package models

// Role is the closed set of operator roles. Roles are assigned at account
// creation by the portal and only looked up here.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleSafetyAdmin Role = "SAFETY_ADMIN"
	RoleMonitorOnly Role = "MONITOR_ONLY"
)

// Permission is the closed set of actions a role can grant.
type Permission string

const (
	PermViewOnly          Permission = "VIEW_ONLY"
	PermViewAnalytics     Permission = "VIEW_ANALYTICS"
	PermAcknowledgeAlert  Permission = "ACKNOWLEDGE_ALERT"
	PermActivateEmergency Permission = "ACTIVATE_EMERGENCY"
	PermManageUsers       Permission = "MANAGE_USERS"
)

// Principal is an already-authenticated actor. Authentication happens in
// the portal; this service only authorizes.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
