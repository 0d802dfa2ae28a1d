package models

import "testing"

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleTeacher, RoleStudent, RoleParent, RoleAdmin} {
		if !role.Valid() {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	for _, role := range []Role{"", "astronaut", "Teacher"} {
		if role.Valid() {
			t.Fatalf("expected %q to be invalid", role)
		}
	}
}

func TestRoleDisplayName(t *testing.T) {
	if RoleStudent.DisplayName() == "" || RoleAdmin.DisplayName() == "" {
		t.Fatalf("expected display names for known roles")
	}
	if Role("astronaut").DisplayName() != "User" {
		t.Fatalf("unknown roles fall back to the generic label")
	}
}

func TestSourceInternal(t *testing.T) {
	if !SourceInternal.Internal() {
		t.Fatalf("internal source must read as internal")
	}
	for _, source := range []Source{SourceInternet, SourceAI, ""} {
		if source.Internal() {
			t.Fatalf("expected %q to read as external", source)
		}
	}
}
