package live

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
)

func TestNavigationsDeliverToUser(t *testing.T) {
	ctx := context.Background()
	n := NewNavigations()
	mine := n.Subscribe(ctx, "u1")
	other := n.Subscribe(ctx, "u2")
	defer mine.Close()
	defer other.Close()

	n.Navigate(ctx, "u1", handoff.LiveChat("s1"))
	n.Navigate(ctx, "u1", handoff.TicketList())

	assert.Equal(t, handoff.TicketList(), next(t, mine), "latest request wins")
	select {
	case v := <-other.C():
		t.Fatalf("unexpected navigation %v", v)
	default:
	}

	n.Navigate(ctx, "nobody", handoff.TicketList())
}

func TestNavigationsUnsubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := NewNavigations()
	first := n.Subscribe(ctx, "u1")
	second := n.Subscribe(context.Background(), "u1")
	assert.Equal(t, 2, n.Listeners())

	cancel()
	second.Close()
	assert.Eventually(t, func() bool { return n.Listeners() == 0 }, 2*time.Second, 10*time.Millisecond)

	_, ok := <-first.C()
	assert.False(t, ok)
	n.Navigate(context.Background(), "u1", handoff.TicketList())
}
