package dashboard

import (
	"context"
	"time"

	"github.com/vendora/edge/internal/edgeerrors"
	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

const ticketsCacheName = "seller/tickets"

// DefaultUrgencyThreshold is how long a ticket may stay open before it counts
// as urgent.
const DefaultUrgencyThreshold = 48 * time.Hour

// HelpdeskAPI is the slice of the commerce client the helpdesk store needs.
type HelpdeskAPI interface {
	ListTickets(ctx context.Context) ([]commerce.Ticket, error)
	ReplyTicket(ctx context.Context, id string, input commerce.TicketReplyInput) (*commerce.Ticket, error)
	CloseTicket(ctx context.Context, id string) (*commerce.Ticket, error)
	SubmitTicketSurvey(ctx context.Context, id string, score int) (*commerce.Ticket, error)
}

// TicketKPIs are the helpdesk headline numbers, derived from the cached
// ticket collection.
type TicketKPIs struct {
	Open          int           `json:"open"`
	Urgent        int           `json:"urgent"`
	OldestOpenAge time.Duration `json:"oldestOpenAge"`
}

// ticketFilter keys the memoized KPI derivation.
type ticketFilter struct {
	AsOf      time.Time
	Threshold time.Duration
}

// Helpdesk serves the seller support ticket collection.
type Helpdesk struct {
	api       HelpdeskAPI
	res       *rescache.Resource[[]commerce.Ticket]
	kpis      *rescache.DerivedView[[]commerce.Ticket, ticketFilter, TicketKPIs]
	threshold time.Duration
	metrics   observability.CacheMetrics
}

// NewHelpdesk creates the helpdesk store. metrics may be nil.
func NewHelpdesk(store *rescache.Store, api HelpdeskAPI, staleAfter time.Duration, metrics observability.CacheMetrics) *Helpdesk {
	res := rescache.NewResource(store, []string{"seller", "tickets"}, api.ListTickets, staleAfter)

	return &Helpdesk{
		api:       api,
		res:       res,
		kpis:      rescache.NewDerivedView(res, deriveTicketKPIs),
		threshold: DefaultUrgencyThreshold,
		metrics:   metrics,
	}
}

// List returns the cached ticket collection, fetching on first access.
func (h *Helpdesk) List(ctx context.Context) ([]commerce.Ticket, error) {
	tickets, hit, err := h.res.GetWithStats(ctx)
	recordLookup(ctx, h.metrics, ticketsCacheName, hit)

	return tickets, err
}

// KPIs returns the open/urgent counts and oldest open age, memoized per
// minute against the cached collection.
func (h *Helpdesk) KPIs(ctx context.Context) (TicketKPIs, error) {
	return h.kpis.Get(ctx, ticketFilter{
		AsOf:      time.Now().Truncate(time.Minute),
		Threshold: h.threshold,
	})
}

// Reply posts a reply and splices the updated ticket (reply appended, status
// bumped by the backend) into the cached collection.
func (h *Helpdesk) Reply(ctx context.Context, id string, input commerce.TicketReplyInput) (*commerce.Ticket, error) {
	return rescache.Mutate(ctx, h.res,
		func(ctx context.Context) (*commerce.Ticket, error) {
			return h.api.ReplyTicket(ctx, id, input)
		},
		spliceTicket,
	)
}

// Close closes the ticket and splices the result into the cached collection.
func (h *Helpdesk) Close(ctx context.Context, id string) (*commerce.Ticket, error) {
	return rescache.Mutate(ctx, h.res,
		func(ctx context.Context) (*commerce.Ticket, error) {
			return h.api.CloseTicket(ctx, id)
		},
		spliceTicket,
	)
}

// SubmitSurvey records a satisfaction score for a closed ticket and splices
// the result into the cached collection. Scores run 1 to 5.
func (h *Helpdesk) SubmitSurvey(ctx context.Context, id string, score int) (*commerce.Ticket, error) {
	if score < 1 || score > 5 {
		return nil, edgeerrors.NewValidationError("score", "survey score must be between 1 and 5")
	}

	return rescache.Mutate(ctx, h.res,
		func(ctx context.Context) (*commerce.Ticket, error) {
			return h.api.SubmitTicketSurvey(ctx, id, score)
		},
		spliceTicket,
	)
}

// Refresh drops the cached collection so the next read refetches.
func (h *Helpdesk) Refresh() {
	h.res.Invalidate()
}

// spliceTicket replaces the matching ticket in old. Pure.
func spliceTicket(old []commerce.Ticket, updated *commerce.Ticket) []commerce.Ticket {
	next := make([]commerce.Ticket, len(old))
	copy(next, old)

	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = *updated
			break
		}
	}

	return next
}

// deriveTicketKPIs is the pure KPI derivation. A ticket is urgent when it has
// been open longer than the threshold.
func deriveTicketKPIs(tickets []commerce.Ticket, f ticketFilter) TicketKPIs {
	var kpis TicketKPIs

	for _, ticket := range tickets {
		if ticket.Status == commerce.TicketClosed {
			continue
		}

		kpis.Open++

		age := f.AsOf.Sub(ticket.CreatedAt)
		if age > f.Threshold {
			kpis.Urgent++
		}

		if age > kpis.OldestOpenAge {
			kpis.OldestOpenAge = age
		}
	}

	return kpis
}
