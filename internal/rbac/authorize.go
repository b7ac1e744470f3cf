package rbac

import (
	"fmt"

	"github.com/carhive/carhive/internal/platform/httpx"
)

// Branch names which rule authorized a mutation.
type Branch string

const (
	// BranchAny means the blanket permission allowed the action.
	BranchAny Branch = "any"
	// BranchOwn means the own-records-only permission allowed it.
	BranchOwn Branch = "own"
)

// Decision is the outcome of a successful authorization.
type Decision struct {
	Branch Branch
}

// Denial sub-reasons. Both satisfy errors.Is(err, httpx.ErrForbidden); the
// distinction is for logs, not for the response body.
var (
	ErrNotOwner     = fmt.Errorf("%w: not the owner", httpx.ErrForbidden)
	ErrNoPermission = fmt.Errorf("%w: insufficient permissions", httpx.ErrForbidden)
)

// Require gates an action behind a single permission. Read and create
// operations use this form; there is no "own" variant for them.
func Require(p Principal, permission string) error {
	perms, err := Resolve(p)
	if err != nil {
		return err
	}
	if !perms.Has(permission) {
		return ErrNoPermission
	}
	return nil
}

// Authorize decides an ownership-scoped mutation. The blanket permission is
// always checked first and short-circuits the ownership comparison, so a
// full-permission holder never pays for an ownership lookup. Otherwise the
// own-records permission applies only when the recorded owner matches the
// principal.
func Authorize(p Principal, anyPerm, ownPerm string, ownerID int64) (Decision, error) {
	perms, err := Resolve(p)
	if err != nil {
		return Decision{}, err
	}
	if perms.Has(anyPerm) {
		return Decision{Branch: BranchAny}, nil
	}
	if perms.Has(ownPerm) {
		if ownerID == p.ID {
			return Decision{Branch: BranchOwn}, nil
		}
		return Decision{}, ErrNotOwner
	}
	return Decision{}, ErrNoPermission
}
