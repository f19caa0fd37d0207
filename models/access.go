package models

import (
	"fmt"

	"bitbucket.org/pleinsud/facade_backend/utils"
)

// CheckCompanyAccess is the tenant-isolation guard. It permits access iff the
// resource's owning company (as loaded from storage, never as asserted by the
// caller) equals the caller's company. Pure predicate, safe for concurrent use.
func CheckCompanyAccess(resourceCompanyId string, callerCompanyId string) error {
	if resourceCompanyId == callerCompanyId {
		return nil
	}
	return fmt.Errorf("%w", utils.ErrorForbidden)
}

// IsOwner reports whether the caller's resolved role grants owner-only operations.
func IsOwner(role string) bool {
	return role == RoleOwner
}
