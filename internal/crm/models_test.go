package crm

import "testing"

func TestRoleOrdering(t *testing.T) {
	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleEditor, false},
		{RoleViewer, RoleAdmin, false},
		{RoleEditor, RoleViewer, true},
		{RoleEditor, RoleEditor, true},
		{RoleEditor, RoleAdmin, false},
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleEditor, true},
		{RoleAdmin, RoleAdmin, true},
	}
	for _, tc := range cases {
		if got := tc.role.AtLeast(tc.min); got != tc.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tc.role, tc.min, got, tc.want)
		}
	}

	// Unknown roles satisfy nothing, not even themselves.
	unknown := Role("owner")
	if unknown.Valid() {
		t.Error("unexpected valid unknown role")
	}
	if unknown.AtLeast(RoleViewer) {
		t.Error("unknown role must not pass a viewer check")
	}
	if unknown.AtLeast(unknown) {
		t.Error("unknown role must not pass its own check")
	}
}

func TestDealStageClosed(t *testing.T) {
	if !StageClosedWon.Closed() || !StageClosedLost.Closed() {
		t.Error("closed stages not reported as closed")
	}
	if StageLead.Closed() || StageNegotiation.Closed() {
		t.Error("open stages reported as closed")
	}
}
