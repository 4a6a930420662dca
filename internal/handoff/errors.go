package handoff

import "errors"

var (
	ErrNotFound          = errors.New("handoff: ticket or session not found")
	ErrAccessDenied      = errors.New("handoff: not a participant of this session")
	ErrAdminOnly         = errors.New("handoff: admin role required")
	ErrInvalidTransition = errors.New("handoff: transition not allowed from current state")
	ErrSessionClosed     = errors.New("handoff: session is closed")
	ErrEmptyMessage      = errors.New("handoff: message text is empty")
)

// Rejection is a failed decision that also moves the user away from the current view.
type Rejection struct {
	Err      error
	Navigate View
}

func (r *Rejection) Error() string {
	return r.Err.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func reject(err error) *Rejection {
	return &Rejection{Err: err, Navigate: TicketList()}
}

// NavigationFor returns the forced navigation attached to err, if any.
func NavigationFor(err error) (View, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection.Navigate, true
	}
	return View{}, false
}
