package domain

import (
	"encoding/json"
	"testing"
)

func TestRolePredicates(t *testing.T) {
	cases := []struct {
		role       Role
		admin      bool
		superAdmin bool
	}{
		{RoleUser, false, false},
		{RoleAdmin, true, false},
		{RoleSuperAdmin, true, true},
		{Role("shop_owner"), false, false},
		{Role(""), false, false},
		{Role("ADMIN"), false, false},
	}

	for _, tc := range cases {
		u := &UserProfile{Role: tc.role}
		if got := IsAdmin(u); got != tc.admin {
			t.Errorf("IsAdmin(%q) = %v, want %v", tc.role, got, tc.admin)
		}
		if got := IsSuperAdmin(u); got != tc.superAdmin {
			t.Errorf("IsSuperAdmin(%q) = %v, want %v", tc.role, got, tc.superAdmin)
		}
	}
}

func TestRolePredicates_NilUser(t *testing.T) {
	if IsAdmin(nil) || IsSuperAdmin(nil) {
		t.Fatalf("expected predicates to be false for nil user")
	}
}

func TestRole_Known(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAdmin, RoleSuperAdmin} {
		if !r.Known() {
			t.Errorf("expected %q to be known", r)
		}
	}
	if Role("owner").Known() {
		t.Errorf("expected unknown role")
	}
}

func TestSession_IsAuthenticated(t *testing.T) {
	u := &UserProfile{ID: "u1"}
	cases := []struct {
		name string
		s    Session
		want bool
	}{
		{"empty", Session{}, false},
		{"user only", Session{User: u}, false},
		{"token only", Session{Token: "t"}, false},
		{"both", Session{User: u, Token: "t"}, true},
		{"both while loading", Session{User: u, Token: "t", Loading: true}, true},
	}
	for _, tc := range cases {
		if got := tc.s.IsAuthenticated(); got != tc.want {
			t.Errorf("%s: IsAuthenticated() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUserProfile_DecodesShopIDsAndDocuments(t *testing.T) {
	raw := `{"_id":"u1","fullName":"Ann","email":"ann@example.com","role":"admin",
		"shops":["s1",{"_id":"s2","name":"Second"}],"isActive":true}`

	var u UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(u.Shops) != 2 {
		t.Fatalf("expected 2 shops, got %d", len(u.Shops))
	}
	if u.Shops[0].ID != "s1" || u.Shops[1].ID != "s2" || u.Shops[1].Name != "Second" {
		t.Fatalf("unexpected shops: %+v", u.Shops)
	}
	if u.Role != RoleAdmin || !u.IsActive {
		t.Fatalf("unexpected profile: %+v", u)
	}
}
