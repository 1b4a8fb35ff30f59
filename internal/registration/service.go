package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/Geniuskaa/quran_fest/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrClosed  = errors.New("registration is closed")
	ErrInvalid = errors.New("registration form is invalid")
)

// Sender delivers an encoded Payload to the intake endpoint.
type Sender interface {
	Send(ctx context.Context, body []byte) error
}

type Service struct {
	logger    *zap.Logger
	validator *Validator
	guard     *Guard
	sender    Sender
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
	open      atomic.Bool
}

func NewService(logger *zap.Logger, v *Validator, g *Guard, sender Sender, m *metrics.Metrics, open bool) *Service {
	s := &Service{
		logger:    logger,
		validator: v,
		guard:     g,
		sender:    sender,
		metrics:   m,
		tracer:    otel.Tracer("registration"),
		now:       time.Now,
	}
	s.open.Store(open)
	return s
}

func (s *Service) SetOpen(open bool) {
	if s.open.Swap(open) != open {
		s.logger.Info("registration state changed", zap.Bool("open", open))
	}
}

func (s *Service) Open() bool {
	return s.open.Load()
}

func (s *Service) StrictPaymentRef() bool {
	return s.validator.Strict()
}

// NewToken identifies one rendering of the form. Posting the same token twice
// never produces a second registration.
func (s *Service) NewToken() string {
	return uuid.NewString()
}

func (s *Service) Normalize(f Form) Form {
	return Normalize(f, s.validator.Strict())
}

func (s *Service) Validate(f Form) Errors {
	return s.validator.Validate(s.Normalize(f), s.now())
}

// Completed returns the confirmation of an already accepted token.
func (s *Service) Completed(token string) (*Confirmation, bool) {
	if token == "" {
		return nil, false
	}
	return s.guard.Completed(token)
}

// Submit validates f and forwards it to the intake. Field problems come back
// as Errors together with ErrInvalid.
func (s *Service) Submit(ctx context.Context, client string, f Form, proof *PaymentFile) (*Confirmation, Errors, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Submit", trace.WithAttributes(
		attribute.String("category", f.Category),
	))
	defer span.End()

	if !s.Open() {
		s.metrics.Registration(metrics.OUTCOME_CLOSED)
		return nil, nil, ErrClosed
	}

	f = s.Normalize(f)
	if _, err := uuid.Parse(f.Token); err != nil {
		f.Token = s.NewToken()
	}

	if c, ok := s.guard.Completed(f.Token); ok {
		s.metrics.Registration(metrics.OUTCOME_DUPLICATE)
		s.logger.Info("replaying confirmation", zap.String("submission", f.Token))
		return c, nil, nil
	}

	now := s.now()
	if errs := s.validator.Validate(f, now); len(errs) > 0 {
		s.metrics.Registration(metrics.OUTCOME_INVALID)
		return nil, errs, ErrInvalid
	}

	if !s.guard.Allow(client) {
		s.metrics.Registration(metrics.OUTCOME_RATE_LIMITED)
		s.logger.Warn("registration rate limited", zap.String("client", client))
		return nil, nil, ErrRateLimited
	}

	prior, err := s.guard.Begin(f.Token)
	if err != nil {
		s.metrics.Registration(metrics.OUTCOME_DUPLICATE)
		return nil, nil, err
	}
	if prior != nil {
		s.metrics.Registration(metrics.OUTCOME_DUPLICATE)
		return prior, nil, nil
	}

	conf, err := s.send(ctx, f, proof, now)
	if !s.guard.Finish(f.Token, conf) {
		s.logger.Warn("accepted token not kept for replay", zap.String("submission", f.Token))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "intake failed")
		s.metrics.Registration(metrics.OUTCOME_REJECTED)
		s.logger.Warn("registration not accepted", zap.String("submission", f.Token), zap.Error(err))
		return nil, nil, err
	}

	s.metrics.Registration(metrics.OUTCOME_ACCEPTED)
	s.logger.Info("registration accepted",
		zap.String("submission", conf.SubmissionID),
		zap.String("category", conf.Category))
	return conf, nil, nil
}

func (s *Service) send(ctx context.Context, f Form, proof *PaymentFile, now time.Time) (*Confirmation, error) {
	p := Payload{
		Form:          f,
		CategoryTitle: competition.CategoryTitle(f.Category),
		PaymentFile:   proof,
		SubmissionID:  f.Token,
		SubmittedAt:   now.UTC(),
	}
	if age, err := ResolveAge(f, now); err == nil {
		p.ComputedAge = &age
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("send failed: %w", err)
	}

	if err := s.sender.Send(ctx, body); err != nil {
		return nil, fmt.Errorf("send failed: %w", err)
	}

	return &Confirmation{
		SubmissionID:  f.Token,
		FullName:      f.FullName,
		Category:      f.Category,
		CategoryTitle: p.CategoryTitle,
		Email:         f.Email,
	}, nil
}
