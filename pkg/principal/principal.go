// Package principal reconstructs the request-scoped identity inside internal
// services from the headers the gateway sets. Trust assumption: internal
// services are reachable only through the gateway, so these headers cannot
// originate from a client. They are not cryptographically re-verified here.
package principal

import (
	"context"
	"strings"
)

// Header names shared with the gateway. The gateway strips any inbound copies
// before setting them from verified claims.
const (
	HeaderUserID        = "X-User-Id"
	HeaderUserName      = "X-User-Name"
	HeaderUserRoles     = "X-User-Roles"
	HeaderCorrelationID = "X-Correlation-Id"
)

const (
	RoleUser    = "ROLE_USER"
	RoleManager = "ROLE_MANAGER"
	RoleAdmin   = "ROLE_ADMIN"
)

type Principal struct {
	UserID   uint
	Username string
	Roles    []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool { return p.HasRole(RoleAdmin) }

// ParseRoles splits a comma-joined roles header, trimming whitespace and
// discarding blanks.
func ParseRoles(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type ctxKey struct{}

func IntoContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
