package types

import "strconv"

// Workspace member roles
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
)

// Company-level roles
const (
	CompanyRoleGuest  = "guest"
	CompanyRoleMember = "member"
	CompanyRoleAdmin  = "admin"
	CompanyRoleOwner  = "owner"
)

// Counter types
const (
	CounterTypeMembers = "members"
)

// ValidWorkspaceRoles for validation
var ValidWorkspaceRoles = []string{RoleMember, RoleModerator}

// ValidCompanyRoles for validation
var ValidCompanyRoles = []string{CompanyRoleGuest, CompanyRoleMember, CompanyRoleAdmin, CompanyRoleOwner}

// IsValidWorkspaceRole reports whether role is a known workspace role.
func IsValidWorkspaceRole(role string) bool {
	for _, r := range ValidWorkspaceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ContextUser identifies the caller of a service operation. ServerRequest
// marks privileged internal calls that bypass per-user scoping.
type ContextUser struct {
	ID            string
	ServerRequest bool
}

// ExecutionContext carries the tenant scope for service operations.
type ExecutionContext struct {
	CompanyID string
	User      ContextUser
}

// ServerContext builds a privileged execution context for a company.
func ServerContext(companyID, userID string) ExecutionContext {
	return ExecutionContext{
		CompanyID: companyID,
		User:      ContextUser{ID: userID, ServerRequest: true},
	}
}

// Pagination is an opaque-token page request. An empty PageToken means the
// first page; a zero Limit falls back to DefaultPageLimit.
type Pagination struct {
	PageToken string
	Limit     int
}

const DefaultPageLimit = 100

// Offset decodes the page token into a row offset. Malformed tokens read as
// the first page.
func (p Pagination) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	n, err := strconv.Atoi(p.PageToken)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PageLimit returns the effective page size.
func (p Pagination) PageLimit() int {
	if p.Limit <= 0 {
		return DefaultPageLimit
	}
	return p.Limit
}

// NextToken returns the token for the page after this one, or "" when the
// page was not full (no further pages).
func (p Pagination) NextToken(fetched int) string {
	if fetched < p.PageLimit() {
		return ""
	}
	return strconv.Itoa(p.Offset() + fetched)
}
