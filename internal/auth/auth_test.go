package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crowd-safety-service/internal/models"
)

func newTestService() *Service {
	return New([]models.Principal{
		{ID: "root-1", Name: "Site Director", Role: models.RoleSuperAdmin},
		{ID: "admin-1", Name: "Safety Lead", Role: models.RoleSafetyAdmin},
		{ID: "viewer-1", Name: "Control Room", Role: models.RoleMonitorOnly},
	})
}

func TestCheckPermission(t *testing.T) {
	svc := newTestService()

	assert.True(t, svc.CheckPermission("root-1", models.PermManageUsers))
	assert.True(t, svc.CheckPermission("admin-1", models.PermActivateEmergency))
	assert.False(t, svc.CheckPermission("admin-1", models.PermManageUsers))
	assert.True(t, svc.CheckPermission("viewer-1", models.PermViewOnly))
	assert.False(t, svc.CheckPermission("viewer-1", models.PermActivateEmergency))
}

func TestUnknownPrincipalFailsClosed(t *testing.T) {
	svc := newTestService()

	assert.False(t, svc.CheckPermission("ghost", models.PermViewOnly))
	assert.False(t, svc.HasRole("ghost", models.RoleSuperAdmin))
	assert.Empty(t, svc.UserPermissions("ghost"))
	assert.NotNil(t, svc.UserPermissions("ghost"))
}

func TestHasRole(t *testing.T) {
	svc := newTestService()

	assert.True(t, svc.HasRole("admin-1", models.RoleSafetyAdmin))
	assert.False(t, svc.HasRole("admin-1", models.RoleSuperAdmin))
}

func TestUserPermissionsIsACopy(t *testing.T) {
	svc := newTestService()

	perms := svc.UserPermissions("viewer-1")
	assert.Equal(t, []models.Permission{models.PermViewOnly}, perms)
	perms[0] = models.PermManageUsers

	assert.Equal(t, []models.Permission{models.PermViewOnly}, svc.UserPermissions("viewer-1"))
}

func TestRegisterReplaces(t *testing.T) {
	svc := newTestService()
	svc.Register(models.Principal{ID: "viewer-1", Name: "Control Room", Role: models.RoleSafetyAdmin})

	assert.True(t, svc.CheckPermission("viewer-1", models.PermAcknowledgeAlert))
}
