package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	apperrors "darassa/pkg/errors"
	httputil "darassa/pkg/http"
	"darassa/pkg/logger"
	"darassa/pkg/model"

	"github.com/golang-jwt/jwt/v4"
)

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Roles   []model.Role
}

func (p Principal) HasAnyRole(roles ...model.Role) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Auth verifies an HMAC-signed Bearer token and stores the Principal on the
// request context. Health probes pass through untouched.
func Auth(secret string, log *logger.Logger, publicPaths ...string) func(http.Handler) http.Handler {
	key := []byte(strings.TrimSpace(secret))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(publicPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authenticate(r, key)
			if err != nil {
				log.WithContext(r.Context()).Warn("Authentication failed",
					"reason", err.Error(),
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or missing access token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func authenticate(r *http.Request, key []byte) (Principal, error) {
	raw := bearerToken(r)
	if raw == "" {
		return Principal{}, errMissingToken
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return key, nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, errInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errInvalidToken
	}

	return Principal{
		Subject: firstStringClaim(claims, "sub", "id", "user_id"),
		Roles:   rolesClaim(claims),
	}, nil
}

func bearerToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func firstStringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// rolesClaim accepts either "roles": [..] or a single "role": "..".
// Unknown role names are ignored.
func rolesClaim(claims jwt.MapClaims) []model.Role {
	var names []string
	switch v := claims["roles"].(type) {
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok {
				names = append(names, s)
			}
		}
	case string:
		names = append(names, strings.Split(v, ",")...)
	}
	if s, ok := claims["role"].(string); ok {
		names = append(names, s)
	}

	roles := make([]model.Role, 0, len(names))
	for _, n := range names {
		role := model.Role(strings.ToLower(strings.TrimSpace(n)))
		if role.Valid() && !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// RequireRoles wraps a single route. Without a Principal on the context
// (authentication disabled) the route is open.
func RequireRoles(next http.Handler, roles ...model.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if ok && !principal.HasAnyRole(roles...) {
			_ = httputil.WriteError(w, apperrors.Forbidden("Insufficient role for this operation"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
