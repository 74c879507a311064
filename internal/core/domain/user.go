package domain

import (
	"encoding/json"
	"time"
)

// Role is the coarse-grained privilege level of a console user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Known reports whether r belongs to the closed set of roles.
func (r Role) Known() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ShopRef is the minimal view of a shop owned by a user.
type ShopRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts both a bare shop id and a populated shop document.
func (s *ShopRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*s = ShopRef{ID: id}
		return nil
	}
	type shopRef ShopRef
	var ref shopRef
	if err := json.Unmarshal(b, &ref); err != nil {
		return err
	}
	*s = ShopRef(ref)
	return nil
}

// UserProfile is the snapshot of the signed-in user returned by the API.
type UserProfile struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `json:"role"`
	Shops     []ShopRef `json:"shops,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds admin or super admin privileges.
func IsAdmin(u *UserProfile) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// IsSuperAdmin reports whether the user holds super admin privileges.
func IsSuperAdmin(u *UserProfile) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleSuperAdmin
}
