package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/assistant"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// TicketService coordinates ticket workflows outside the hand-off.
type TicketService struct {
	publisher
	tickets repository.TicketRepository
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters for both portals.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		publisher: publisher{dispatcher: deps.Dispatcher, logger: logger},
		tickets:   deps.TicketRepo,
	}
}

// CreateTicket files a pending ticket for a customer.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	return s.create(ctx, actor, input, false)
}

// CreateFromSuggestion materializes a confirmed assistant suggestion.
func (s *TicketService) CreateFromSuggestion(ctx context.Context, actor domain.Actor, suggestion assistant.TicketSuggestion, priority domain.TicketPriority) (*domain.Ticket, error) {
	return s.create(ctx, actor, TicketCreateInput{
		Title:       suggestion.Title,
		Description: suggestion.Description,
		Priority:    priority,
	}, true)
}

func (s *TicketService) create(ctx context.Context, actor domain.Actor, input TicketCreateInput, fromAssistant bool) (*domain.Ticket, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, apperrors.NewForbidden("only customers file tickets")
	}
	ticket := &domain.Ticket{
		CustomerID:  actor.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusPending,
		Priority:    input.Priority,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewWriteFailed("create ticket", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketCreated,
		TicketID:   ticket.ID,
		CustomerID: ticket.CustomerID,
		Actor:      eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Priority:      ticket.Priority,
			Title:         ticket.Title,
			FromAssistant: fromAssistant,
		},
	})
	return ticket, nil
}

func validateTicket(ticket *domain.Ticket) error {
	details := map[string]any{}
	if ticket.Title == "" {
		details["title"] = "required"
	} else if utf8.RuneCountInString(ticket.Title) > maxTitleLength {
		details["title"] = "too long"
	}
	if utf8.RuneCountInString(ticket.Description) > maxDescriptionLength {
		details["description"] = "too long"
	}
	if !ticket.Priority.Valid() {
		details["priority"] = "must be low, medium or high"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket", details)
	}
	return nil
}

// ListCustomerTickets lists the caller's own tickets, most recently updated first.
func (s *TicketService) ListCustomerTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	customerID := actor.ID
	return s.list(ctx, repository.TicketFilter{
		CustomerID: &customerID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ListTickets is the admin queue with status, priority and text filters.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	return s.list(ctx, repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, storeUnavailable("list tickets", err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// GetTicket returns a ticket to its owner or any admin. Other customers get
// NOT_FOUND so ticket ids cannot be probed.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, storeUnavailable("load ticket", err)
	}
	if !actor.IsAdmin() && ticket.CustomerID != actor.ID {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}
