package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insurecare/feedback-portal/internal/access"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

// RequireKind guards a route group to the given caller kinds. Anonymous callers
// get Unauthorized, other kinds Forbidden.
func RequireKind(allowed ...access.Kind) fiber.Handler {
	allowedSet := make(map[access.Kind]struct{}, len(allowed))
	for _, kind := range allowed {
		allowedSet[kind] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		caller := CallerFromContext(c)
		if caller.IsAnonymous() {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[caller.Kind]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin ensures an admin caller.
func RequireAdmin() fiber.Handler {
	return RequireKind(access.KindAdmin)
}

// RequireStaff ensures an agent or frontline caller.
func RequireStaff() fiber.Handler {
	return RequireKind(access.KindAgent, access.KindFrontline)
}

// RequireAuthenticated ensures any signed-in caller.
func RequireAuthenticated() fiber.Handler {
	return RequireKind()
}
