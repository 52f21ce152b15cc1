package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"staging-pro-backend/internal/logger"
)

// MinimumAmount is the smallest chargeable amount in minor units.
const MinimumAmount int64 = 50

var (
	ErrAmountBelowMinimum = errors.New("amount is below the checkout minimum")
	ErrInvalidRequest     = errors.New("invalid checkout request")
	ErrUnavailable        = errors.New("checkout provider is not configured")
)

var validate = validator.New()

// Request describes one hosted payment page for one order.
type Request struct {
	PlanTitle        string
	AmountMinorUnits int64
	OrderID          string `validate:"required"`
	PayerEmail       string `validate:"required,email"`
}

// Session is a provider checkout session.
type Session struct {
	ID          string
	RedirectURL string
	OrderID     string
	Paid        bool
}

// Provider creates and inspects hosted checkout sessions.
type Provider interface {
	CreateSession(ctx context.Context, req Request) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
}

// Service guards a Provider: requests are validated and the minimum
// amount enforced before the provider is called.
type Service struct {
	provider Provider
}

// NewService returns a Service. A nil provider yields a service whose
// calls fail with ErrUnavailable.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

func (s *Service) Enabled() bool {
	return s.provider != nil
}

func (s *Service) CreateSession(ctx context.Context, req Request) (Session, error) {
	if err := validate.Struct(req); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.AmountMinorUnits < MinimumAmount {
		return Session{}, fmt.Errorf("%w: %d < %d", ErrAmountBelowMinimum, req.AmountMinorUnits, MinimumAmount)
	}
	if s.provider == nil {
		return Session{}, ErrUnavailable
	}

	session, err := s.provider.CreateSession(ctx, req)
	if err != nil {
		logger.Warn(ctx, "checkout session creation failed", "order_id", req.OrderID, "error", err)
		return Session{}, fmt.Errorf("failed to create checkout session: %w", err)
	}
	logger.Info(ctx, "checkout session created", "order_id", req.OrderID, "session_id", session.ID)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}
	if s.provider == nil {
		return Session{}, ErrUnavailable
	}
	session, err := s.provider.GetSession(ctx, id)
	if err != nil {
		return Session{}, fmt.Errorf("failed to get checkout session: %w", err)
	}
	return session, nil
}
