package common

// Roles carried in access tokens and stored on users.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Person list types.
const (
	ListWhitelist = "whitelist"
	ListBlacklist = "blacklist"
)

// Access log actions.
const (
	ActionGranted = "access_granted"
	ActionDenied  = "access_denied"
)

// NormalizeRole maps anything other than admin to the plain user role.
func NormalizeRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// NormalizeListType maps anything other than blacklist to whitelist.
func NormalizeListType(listType string) string {
	if listType == ListBlacklist {
		return ListBlacklist
	}
	return ListWhitelist
}

// NormalizeAction maps anything other than access_denied to access_granted.
func NormalizeAction(action string) string {
	if action == ActionDenied {
		return ActionDenied
	}
	return ActionGranted
}
