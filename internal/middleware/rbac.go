package middleware

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mentora-api/internal/utils"
)

// Roles recognised by the admin surface.
const (
	RoleAdmin      = "admin"
	RoleCounsellor = "counsellor"
)

// ReviewerRoles may work the review queues.
var ReviewerRoles = []string{RoleAdmin, RoleCounsellor}

// RequireRole admits the request only when the authenticated caller holds one of roles.
// Anonymous callers get 401; authenticated callers with another role get 403 listing the
// roles that would have been accepted.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRoleValue(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	required := make([]string, 0, len(allowed))
	for role := range allowed {
		required = append(required, role)
	}
	sort.Strings(required)

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{
				"required_roles": required,
			})
		}
		return c.Next()
	}
}

// RequireReviewer admits admins and counsellors.
func RequireReviewer() fiber.Handler {
	return RequireRole(ReviewerRoles...)
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
