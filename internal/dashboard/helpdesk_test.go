package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

type fakeHelpdeskAPI struct {
	tickets   []commerce.Ticket
	listCalls int
}

func (f *fakeHelpdeskAPI) ListTickets(_ context.Context) ([]commerce.Ticket, error) {
	f.listCalls++
	return f.tickets, nil
}

func (f *fakeHelpdeskAPI) ReplyTicket(_ context.Context, id string, input commerce.TicketReplyInput) (*commerce.Ticket, error) {
	t := f.find(id)
	t.Replies = append(t.Replies, commerce.TicketReply{Author: input.Author, Message: input.Message})
	t.Status = commerce.TicketAnswered

	return t, nil
}

func (f *fakeHelpdeskAPI) CloseTicket(_ context.Context, id string) (*commerce.Ticket, error) {
	t := f.find(id)
	t.Status = commerce.TicketClosed

	return t, nil
}

func (f *fakeHelpdeskAPI) SubmitTicketSurvey(_ context.Context, id string, score int) (*commerce.Ticket, error) {
	t := f.find(id)
	t.SurveyScore = &score

	return t, nil
}

func (f *fakeHelpdeskAPI) find(id string) *commerce.Ticket {
	for _, t := range f.tickets {
		if t.ID == id {
			return &t
		}
	}

	return &commerce.Ticket{ID: id}
}

func TestHelpdesk_Reply_appends_and_bumps_status(t *testing.T) {
	api := &fakeHelpdeskAPI{tickets: []commerce.Ticket{
		{ID: "t1", Status: commerce.TicketOpen},
	}}
	store := NewHelpdesk(rescache.NewStore(), api, time.Hour, nil)
	ctx := context.Background()

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if _, err := store.Reply(ctx, "t1", commerce.TicketReplyInput{Author: "seller", Message: "on it"}); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	tickets, _ := store.List(ctx)
	if tickets[0].Status != commerce.TicketAnswered {
		t.Errorf("cached status = %s, want answered", tickets[0].Status)
	}
	if len(tickets[0].Replies) != 1 {
		t.Errorf("cached replies = %d, want 1", len(tickets[0].Replies))
	}
	if api.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 (mutation must not refetch)", api.listCalls)
	}
}

func TestHelpdesk_Close_then_survey(t *testing.T) {
	api := &fakeHelpdeskAPI{tickets: []commerce.Ticket{
		{ID: "t1", Status: commerce.TicketAnswered},
	}}
	store := NewHelpdesk(rescache.NewStore(), api, time.Hour, nil)
	ctx := context.Background()

	if _, err := store.Close(ctx, "t1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ticket, err := store.SubmitSurvey(ctx, "t1", 5)
	if err != nil {
		t.Fatalf("SubmitSurvey() error = %v", err)
	}
	if ticket.SurveyScore == nil || *ticket.SurveyScore != 5 {
		t.Errorf("SurveyScore = %v, want 5", ticket.SurveyScore)
	}
}

func TestHelpdesk_KPIs(t *testing.T) {
	now := time.Now()
	api := &fakeHelpdeskAPI{tickets: []commerce.Ticket{
		{ID: "fresh", Status: commerce.TicketOpen, CreatedAt: now.Add(-time.Hour)},
		{ID: "stale", Status: commerce.TicketOpen, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "done", Status: commerce.TicketClosed, CreatedAt: now.Add(-200 * time.Hour)},
	}}
	store := NewHelpdesk(rescache.NewStore(), api, time.Hour, nil)

	kpis, err := store.KPIs(context.Background())
	if err != nil {
		t.Fatalf("KPIs() error = %v", err)
	}

	if kpis.Open != 2 {
		t.Errorf("Open = %d, want 2", kpis.Open)
	}
	if kpis.Urgent != 1 {
		t.Errorf("Urgent = %d, want 1", kpis.Urgent)
	}
	if kpis.OldestOpenAge < 71*time.Hour {
		t.Errorf("OldestOpenAge = %v, want about 72h", kpis.OldestOpenAge)
	}
}
