package middleware

import (
	"net/http"

	"soukly-backend/internal/domain"
)

// RequireRole ensures the authenticated user carries one of the given roles.
// MUST be used AFTER AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
			if !ok || user == nil {
				http.Error(w, "Unauthorized: No user found in context", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		})
	}
}

// AdminMiddleware gates admin-only surfaces.
func AdminMiddleware(next http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin)(next)
}

// SupplierMiddleware gates the supplier dashboard surface.
func SupplierMiddleware(next http.Handler) http.Handler {
	return RequireRole(domain.RoleSupplier)(next)
}

// PartnerMiddleware gates the ambassador surface.
func PartnerMiddleware(next http.Handler) http.Handler {
	return RequireRole(domain.RolePartner)(next)
}
