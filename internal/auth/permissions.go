package auth

import "net/http"

// CheckPermission requires an exact match of permission in the claim set.
// A token without a permissions claim is a provider configuration problem
// and is reported separately from a missing grant.
func CheckPermission(claims *Claims, permission string) error {
	if claims == nil || !claims.HasPermissionsClaim() {
		return errInvalidClaims(http.StatusBadRequest, msgPermissionsNotIncluded, nil)
	}
	if !claims.HasPermission(permission) {
		return errPermissionDenied()
	}
	return nil
}
