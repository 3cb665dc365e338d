// Package permission maps principal roles to capability sets and hierarchy levels.
// The tables are fixed at compile time and only exposed through copies.
package permission

import "sort"

type Role string

// User roles. Guest is never persisted; it stands for unauthenticated access.
const (
	RoleGuest           Role = "guest"
	RoleUser            Role = "user"
	RoleCommunityMember Role = "community_member"
)

// Admin roles.
const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type Capability string

const (
	ViewCampaigns      Capability = "view_campaigns"
	CreateDonation     Capability = "create_donation"
	ViewProfile        Capability = "view_profile"
	UpdateProfile      Capability = "update_profile"
	CreateCampaign     Capability = "create_campaign"
	ManageOwnCampaigns Capability = "manage_own_campaigns"

	ViewDashboard           Capability = "view_dashboard"
	ManageCampaigns         Capability = "manage_campaigns"
	ManageCommunityRequests Capability = "manage_community_requests"
	ManageUsers             Capability = "manage_users"
	ViewDonations           Capability = "view_donations"
	ManageAdmins            Capability = "manage_admins"
	SystemSettings          Capability = "system_settings"
)

type roleDef struct {
	level       int
	grants      []Capability
	displayName string
	description string
}

var userRoles = map[Role]roleDef{
	RoleGuest: {
		level:       0,
		grants:      []Capability{ViewCampaigns},
		displayName: "Guest",
		description: "Can view campaigns only",
	},
	RoleUser: {
		level:       1,
		grants:      []Capability{ViewCampaigns, CreateDonation, ViewProfile, UpdateProfile},
		displayName: "User",
		description: "Can donate and manage their profile",
	},
	RoleCommunityMember: {
		level: 2,
		grants: []Capability{ViewCampaigns, CreateDonation, ViewProfile, UpdateProfile,
			CreateCampaign, ManageOwnCampaigns},
		displayName: "Community Member",
		description: "Can create and manage fundraising campaigns",
	},
}

var adminRoles = map[Role]roleDef{
	RoleAdmin: {
		level: 1,
		grants: []Capability{ViewDashboard, ManageCampaigns, ManageCommunityRequests,
			ManageUsers, ViewDonations},
		displayName: "Administrator",
		description: "Reviews campaigns, community requests and users",
	},
	RoleSuperAdmin: {
		level: 2,
		grants: []Capability{ViewDashboard, ManageCampaigns, ManageCommunityRequests,
			ManageUsers, ViewDonations, ManageAdmins, SystemSettings},
		displayName: "Super Administrator",
		description: "Full access including admin management",
	},
}

func lookup(r Role) (roleDef, bool) {
	if d, ok := userRoles[r]; ok {
		return d, true
	}
	d, ok := adminRoles[r]
	return d, ok
}

// IsUserRole reports whether r is a user-side role (including guest).
func IsUserRole(r Role) bool {
	_, ok := userRoles[r]
	return ok
}

// IsAdminRole reports whether r is an admin-side role.
func IsAdminRole(r Role) bool {
	_, ok := adminRoles[r]
	return ok
}

// IsAssignableUserRole reports whether r may be stored on a user row.
func IsAssignableUserRole(r Role) bool {
	return r == RoleUser || r == RoleCommunityMember
}

// Capabilities returns a fresh copy of the role's capability list. Unknown roles get nothing.
func Capabilities(r Role) []Capability {
	d, ok := lookup(r)
	if !ok {
		return []Capability{}
	}
	out := make([]Capability, len(d.grants))
	copy(out, d.grants)
	return out
}

// Strings is Capabilities rendered as plain strings for responses.
func Strings(r Role) []string {
	caps := Capabilities(r)
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	sort.Strings(out)
	return out
}

func Has(r Role, c Capability) bool {
	d, ok := lookup(r)
	if !ok {
		return false
	}
	for _, g := range d.grants {
		if g == c {
			return true
		}
	}
	return false
}

// Level returns the role's position in its hierarchy, or -1 for unknown roles.
func Level(r Role) int {
	d, ok := lookup(r)
	if !ok {
		return -1
	}
	return d.level
}

// AtLeast compares two roles of the same hierarchy. Roles from different hierarchies never satisfy each other.
func AtLeast(r, min Role) bool {
	if IsUserRole(r) != IsUserRole(min) || Level(r) < 0 || Level(min) < 0 {
		return false
	}
	return Level(r) >= Level(min)
}

func DisplayName(r Role) string {
	if d, ok := lookup(r); ok {
		return d.displayName
	}
	return "Unknown"
}

func Description(r Role) string {
	if d, ok := lookup(r); ok {
		return d.description
	}
	return ""
}

// RoleInfo is the role summary returned to clients.
type RoleInfo struct {
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
	Level       int    `json:"level"`
	Description string `json:"description"`
}

func Info(r Role) RoleInfo {
	return RoleInfo{
		Role:        r,
		DisplayName: DisplayName(r),
		Level:       Level(r),
		Description: Description(r),
	}
}

// Flags is the boolean capability view returned by /me.
type Flags struct {
	CanViewCampaigns          bool `json:"canViewCampaigns"`
	CanDonate                 bool `json:"canDonate"`
	CanCreateCampaign         bool `json:"canCreateCampaign"`
	CanManageOwnCampaigns     bool `json:"canManageOwnCampaigns"`
	CanViewDashboard          bool `json:"canViewDashboard"`
	CanManageCampaigns        bool `json:"canManageCampaigns"`
	CanManageCommunityRequest bool `json:"canManageCommunityRequests"`
	CanManageUsers            bool `json:"canManageUsers"`
	CanManageAdmins           bool `json:"canManageAdmins"`
}

func FlagsFor(r Role) Flags {
	return Flags{
		CanViewCampaigns:          Has(r, ViewCampaigns),
		CanDonate:                 Has(r, CreateDonation),
		CanCreateCampaign:         Has(r, CreateCampaign),
		CanManageOwnCampaigns:     Has(r, ManageOwnCampaigns),
		CanViewDashboard:          Has(r, ViewDashboard),
		CanManageCampaigns:        Has(r, ManageCampaigns),
		CanManageCommunityRequest: Has(r, ManageCommunityRequests),
		CanManageUsers:            Has(r, ManageUsers),
		CanManageAdmins:           Has(r, ManageAdmins),
	}
}
