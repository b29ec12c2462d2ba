package relay

import (
	"context"
	"errors"
	"log"

	"debate-relay/internal/observability"
	"debate-relay/internal/repositories"
)

// Sender pushes a payload to one live connection. It returns an error wrapping
// ErrConnectionGone when the peer is no longer reachable.
type Sender interface {
	Send(connectionID string, payload []byte) error
}

// FanoutResult tallies per-target outcomes of one fanout call.
type FanoutResult struct {
	Delivered int
	Reaped    int
	Failed    int
}

// Router resolves a team to its members' live connections and dispatches a
// payload to each. The resolved sets are a snapshot for one call only.
type Router struct {
	memberships repositories.MembershipRepository
	connections repositories.ConnectionRepository
	sender      Sender
}

// NewRouter constructs a Router.
func NewRouter(memberships repositories.MembershipRepository, connections repositories.ConnectionRepository, sender Sender) *Router {
	return &Router{memberships: memberships, connections: connections, sender: sender}
}

// Fanout delivers payload to every live connection of the team's members.
// The originating connection is excluded unless includeOriginator is set, in
// which case it receives the payload even if its user is no longer a member.
// Each delivery is attempted exactly once; one failure never aborts the rest,
// and a gone peer is unregistered as a side effect.
func (r *Router) Fanout(ctx context.Context, teamID, originConnID string, payload []byte, includeOriginator bool) FanoutResult {
	var res FanoutResult

	members, err := r.memberships.MembersOf(ctx, teamID)
	if err != nil {
		log.Printf("fanout: resolve members of team %s: %v", teamID, err)
		observability.IncPersistenceError("members_of")
		return res
	}

	seen := make(map[string]struct{})
	targets := make([]string, 0, len(members))
	for _, userID := range members {
		conns, err := r.connections.ConnectionsForUser(ctx, userID)
		if err != nil {
			log.Printf("fanout: resolve connections for user %s: %v", userID, err)
			observability.IncPersistenceError("connections_for_user")
			continue
		}
		for _, id := range conns {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			targets = append(targets, id)
		}
	}

	if includeOriginator {
		if _, ok := seen[originConnID]; !ok && originConnID != "" {
			targets = append(targets, originConnID)
		}
	}

	for _, id := range targets {
		if id == originConnID && !includeOriginator {
			continue
		}
		switch err := r.sender.Send(id, payload); {
		case err == nil:
			res.Delivered++
			observability.IncFanoutDelivery("delivered")
		case errors.Is(err, ErrConnectionGone):
			res.Reaped++
			observability.IncFanoutDelivery("gone")
			// Stale registry entries self-heal on delivery failure.
			if uerr := r.connections.Unregister(ctx, id); uerr != nil {
				log.Printf("fanout: unregister gone connection %s: %v", id, uerr)
			}
		default:
			res.Failed++
			observability.IncFanoutDelivery("failed")
			log.Printf("fanout: deliver to %s: %v", id, err)
		}
	}

	return res
}
