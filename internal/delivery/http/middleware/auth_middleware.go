package middleware

import (
	"context"
	"net/http"
	"strings"

	"soukly-backend/internal/domain"
	"soukly-backend/pkg/utils"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			cookie, err := r.Cookie("accessToken")
			if err == nil {
				tokenString = cookie.Value
			}
		}

		if tokenString == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		// A partial user built from token claims avoids a DB hit on every
		// request. Role changes only take effect when the token is reissued.
		sub, _ := claims["sub"].(string)
		phone, _ := claims["phone"].(string)
		role, _ := claims["role"].(string)
		actorID, _ := claims["actor"].(string)

		user := &domain.User{
			ID:      sub,
			Phone:   phone,
			Role:    role,
			ActorID: actorID,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
