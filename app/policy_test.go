package app

import (
	"testing"

	"slidelab/models"

	"github.com/stretchr/testify/assert"
)

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		name      string
		act       Action
		role      string
		committee string
		want      bool
	}{
		{"admin creates plates", ActPlateCreate, models.RoleAdmin, "", true},
		{"inventory instructor creates plates", ActPlateCreate, models.RoleInstructor, InventoryCommittee, true},
		{"plain instructor cannot", ActPlateCreate, models.RoleInstructor, "safety", false},
		{"member cannot", ActPlateCreate, models.RoleMember, InventoryCommittee, false},

		{"inventory instructor retires", ActPlateRetire, models.RoleInstructor, InventoryCommittee, true},
		{"inventory instructor returns for others", ActLoanReturnAny, models.RoleInstructor, InventoryCommittee, true},

		{"user manage is admin only", ActUserManage, models.RoleInstructor, InventoryCommittee, false},
		{"admin manages users", ActUserManage, models.RoleAdmin, "", true},
		{"invites are admin only", ActInviteCreate, models.RoleInstructor, InventoryCommittee, false},
		{"scan logs are admin only", ActScanLogView, models.RoleMember, "", false},

		{"unknown action denied", Action("nope"), models.RoleAdmin, "", false},
		{"empty role denied", ActPlateCreate, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.act, tc.role, tc.committee))
		})
	}
}
