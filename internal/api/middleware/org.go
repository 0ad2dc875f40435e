package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/store"
)

const (
	ctxKeyOrgID contextKey = "org_id"
	ctxKeyRole  contextKey = "org_role"
)

// roleRank orders roles for minimum-role checks.
var roleRank = map[domain.Role]int{
	domain.RoleMember:     1,
	domain.RoleTechnician: 2,
	domain.RoleAdmin:      3,
}

// MembershipResolver looks up a user's membership in an organization.
// *store.Queries satisfies it.
type MembershipResolver interface {
	GetMembership(ctx context.Context, orgID, userID string) (domain.Membership, error)
}

var _ MembershipResolver = (*store.Queries)(nil)

// OrgMember resolves the :orgId path parameter against the authenticated
// user's memberships and stores the org scope and role in the context.
// Non-members get a 404 rather than a 403 so organization ids are not
// probeable.
func OrgMember(resolver MembershipResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("orgId")
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code": "INVALID_REQUEST_FIELD", "message": "organization id is required",
			})
			return
		}

		userID := GetUserID(c.Request.Context())
		membership, err := resolver.GetMembership(c.Request.Context(), orgID, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"code": "ORGANIZATION_NOT_FOUND", "message": "organization not found",
			})
			return
		}

		c.Set(string(ctxKeyOrgID), orgID)
		c.Set(string(ctxKeyRole), membership.Role)
		ctx := context.WithValue(c.Request.Context(), ctxKeyOrgID, orgID)
		ctx = context.WithValue(ctx, ctxKeyRole, membership.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole enforces a minimum role within the resolved organization.
// Must run after OrgMember.
func RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetOrgRole(c.Request.Context())
		if roleRank[role] < roleRank[min] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "ORG_PERMISSION_DENIED", "message": "insufficient role for this operation",
			})
			return
		}
		c.Next()
	}
}

// GetOrgID extracts the resolved organization id from context.
func GetOrgID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyOrgID).(string); ok {
		return v
	}
	return ""
}

// GetOrgRole extracts the caller's role in the resolved organization.
func GetOrgRole(ctx context.Context) domain.Role {
	if v, ok := ctx.Value(ctxKeyRole).(domain.Role); ok {
		return v
	}
	return ""
}
