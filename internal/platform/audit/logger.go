// Package audit records who changed what. Entries go to the request logger
// tagged with component=audit so they can be routed apart from access logs.
package audit

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/parser"
)

type Entry struct {
	Action       policy.Action
	ResourceType string
	ResourceID   int64
	Metadata     map[string]interface{}
}

// Log writes e for actor. r supplies the client address and user agent.
func Log(ctx context.Context, r *http.Request, actor *policy.Actor, e Entry) {
	event := zerolog.Ctx(ctx).Info().
		Str("component", "audit").
		Str("action", string(e.Action)).
		Str("resource_type", e.ResourceType).
		Int64("resource_id", e.ResourceID)

	if actor != nil {
		event = event.Int64("account_id", actor.AccountID).Str("role", actor.Role)
		if actor.OrganizationID != nil {
			event = event.Int64("organization_id", *actor.OrganizationID)
		}
	}
	if r != nil {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		client := parser.ParseUserAgent(r.UserAgent())
		event = event.Str("ip_address", ip).
			Str("user_agent", r.UserAgent()).
			Str("os", client.OS).
			Str("browser", client.Browser)
	}
	if len(e.Metadata) > 0 {
		event = event.Fields(e.Metadata)
	}

	event.Msg("audit")
}
