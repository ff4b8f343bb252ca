// Package domain holds the core types shared across services and handlers.
package domain

import "time"

// Role is the closed set of profile roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCompanyOwner Role = "company_owner"
	RoleTeamMember   Role = "team_member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCompanyOwner, RoleTeamMember:
		return true
	}
	return false
}

// BootstrapState is the closed set of outcomes of the bootstrap gate.
type BootstrapState string

const (
	StateUnauthenticated BootstrapState = "unauthenticated"
	StateNeedsProfile    BootstrapState = "needs_profile"
	StateReady           BootstrapState = "ready"
)

// Identity is the auth provider's record of a signed-up user.
// Created on signup; immutable from our side.
type Identity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

// Profile is our extension record for an Identity. At most one per Identity.
type Profile struct {
	ID                 string    `json:"id"` // equals Identity.ID
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	Role               Role      `json:"role"`
	CompanyID          *string   `json:"company_id"`
	EmailVerified      bool      `json:"email_verified"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Company is the tenant entity a Profile belongs to.
type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Industry     string    `json:"industry"`
	BusinessType string    `json:"business_type"`
	SizeBucket   string    `json:"company_size"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BootstrapResult is the outcome of evaluating the bootstrap gate for one
// request. Profile and Company are set only in StateReady; Email is set in
// StateNeedsProfile so the setup prompt can display it.
type BootstrapResult struct {
	State    BootstrapState `json:"state"`
	Email    string         `json:"email,omitempty"`
	Profile  *Profile       `json:"profile,omitempty"`
	Company  *Company       `json:"company,omitempty"`
	LoginURL string         `json:"login_url,omitempty"`
}

// SetupRequest is the one-time profile/company setup payload.
type SetupRequest struct {
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
	Role        Role   `json:"role,omitempty"`
}

// SetupResult is returned after a successful setup.
type SetupResult struct {
	Profile *Profile `json:"profile"`
	Company *Company `json:"company"`
}
