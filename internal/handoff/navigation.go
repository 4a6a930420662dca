package handoff

import (
	"context"
	"strings"
)

// ViewKind names a portal screen the coordinator can send a user to.
type ViewKind string

const (
	ViewTicketList ViewKind = "ticket-list"
	ViewLiveChat   ViewKind = "live-chat"
	ViewOther      ViewKind = "other"
)

// View is a navigation target.
type View struct {
	Kind ViewKind
	ID   string
}

// TicketList is where users land after a terminal error.
func TicketList() View {
	return View{Kind: ViewTicketList}
}

// LiveChat targets a specific session.
func LiveChat(sessionID string) View {
	return View{Kind: ViewLiveChat, ID: sessionID}
}

func (v View) String() string {
	if v.ID == "" {
		return string(v.Kind)
	}
	return string(v.Kind) + "/" + v.ID
}

// ParseView reads the form produced by String. Unknown input maps to ViewOther.
func ParseView(raw string) View {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	kind, id, _ := strings.Cut(raw, "/")
	switch ViewKind(kind) {
	case ViewTicketList:
		return TicketList()
	case ViewLiveChat:
		if id != "" {
			return LiveChat(id)
		}
	}
	return View{Kind: ViewOther, ID: raw}
}

// Navigator delivers navigation side effects to a user's open portal.
type Navigator interface {
	Navigate(ctx context.Context, userID string, view View)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, userID string, view View)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, userID string, view View) {
	f(ctx, userID, view)
}

// NopNavigator drops navigation requests.
type NopNavigator struct{}

// Navigate does nothing.
func (NopNavigator) Navigate(context.Context, string, View) {}
