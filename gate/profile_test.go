package gate_test

import (
	"testing"

	"github.com/diewo77/go-orders/gate"
)

func TestStaticProfile_HasPermission(t *testing.T) {
	profile := gate.NewStaticProfile("clerk",
		gate.NewPermission("order", gate.ActionCreate),
		"product:view",
	)

	if !profile.HasPermission("order:create") {
		t.Error("should have order:create permission")
	}
	if !profile.HasPermission("product:view") {
		t.Error("should have product:view permission")
	}
	if profile.HasPermission("order:delete") {
		t.Error("should not have order:delete permission")
	}
}

func TestStaticProfile_PermissionsIsCopy(t *testing.T) {
	profile := gate.NewStaticProfile("clerk", "order:view")
	perms := profile.Permissions()
	perms[0] = gate.PermissionAll
	if profile.HasPermission("order:delete") {
		t.Error("mutating Permissions() result must not change the profile")
	}
}
