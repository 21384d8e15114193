package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// CircuitBreakerConfig holds configuration for the store circuit breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32

	// OnTransition, when set, is told about every state change
	OnTransition func(name, to string)
}

// DefaultCircuitBreakerConfig returns a default configuration for circuit breaker
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// NewCircuitBreaker builds a breaker that only counts infrastructure failures.
// Not-found, validation and conflict errors are answers, not outages.
func NewCircuitBreaker(config CircuitBreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if config.OnTransition != nil {
				config.OnTransition(name, to.String())
			}
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return pkgerrors.IsNotFound(err) || pkgerrors.IsValidation(err) || pkgerrors.IsConflict(err)
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, pkgerrors.NewUnavailableError(cb.Name()).WithCause(err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func executeErr(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := execute(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// CircuitBreakerContactRepository guards a contact repository with a breaker
type CircuitBreakerContactRepository struct {
	inner ports.ContactRepository
	cb    *gobreaker.CircuitBreaker
}

// NewCircuitBreakerContactRepository wraps inner with cb
func NewCircuitBreakerContactRepository(inner ports.ContactRepository, cb *gobreaker.CircuitBreaker) *CircuitBreakerContactRepository {
	return &CircuitBreakerContactRepository{inner: inner, cb: cb}
}

func (r *CircuitBreakerContactRepository) Create(ctx context.Context, contact *entities.Contact) error {
	return executeErr(r.cb, func() error { return r.inner.Create(ctx, contact) })
}

func (r *CircuitBreakerContactRepository) Update(ctx context.Context, contact *entities.Contact) error {
	return executeErr(r.cb, func() error { return r.inner.Update(ctx, contact) })
}

func (r *CircuitBreakerContactRepository) Delete(ctx context.Context, id string) error {
	return executeErr(r.cb, func() error { return r.inner.Delete(ctx, id) })
}

func (r *CircuitBreakerContactRepository) GetByID(ctx context.Context, id string) (*entities.Contact, error) {
	return execute(r.cb, func() (*entities.Contact, error) { return r.inner.GetByID(ctx, id) })
}

func (r *CircuitBreakerContactRepository) FindRef(ctx context.Context, id string) (entities.ContactRef, bool, error) {
	type found struct {
		ref entities.ContactRef
		ok  bool
	}
	res, err := execute(r.cb, func() (found, error) {
		ref, ok, err := r.inner.FindRef(ctx, id)
		return found{ref: ref, ok: ok}, err
	})
	return res.ref, res.ok, err
}

func (r *CircuitBreakerContactRepository) Search(ctx context.Context, query string) ([]*entities.Contact, error) {
	return execute(r.cb, func() ([]*entities.Contact, error) { return r.inner.Search(ctx, query) })
}

func (r *CircuitBreakerContactRepository) List(ctx context.Context) ([]*entities.Contact, error) {
	return execute(r.cb, func() ([]*entities.Contact, error) { return r.inner.List(ctx) })
}

// CircuitBreakerRelationshipRepository guards a relationship repository with a breaker
type CircuitBreakerRelationshipRepository struct {
	inner ports.RelationshipRepository
	cb    *gobreaker.CircuitBreaker
}

// NewCircuitBreakerRelationshipRepository wraps inner with cb
func NewCircuitBreakerRelationshipRepository(inner ports.RelationshipRepository, cb *gobreaker.CircuitBreaker) *CircuitBreakerRelationshipRepository {
	return &CircuitBreakerRelationshipRepository{inner: inner, cb: cb}
}

func (r *CircuitBreakerRelationshipRepository) Create(ctx context.Context, rel *entities.Relationship) error {
	return executeErr(r.cb, func() error { return r.inner.Create(ctx, rel) })
}

func (r *CircuitBreakerRelationshipRepository) GetByID(ctx context.Context, id string) (*entities.Relationship, error) {
	return execute(r.cb, func() (*entities.Relationship, error) { return r.inner.GetByID(ctx, id) })
}

func (r *CircuitBreakerRelationshipRepository) Delete(ctx context.Context, id string) error {
	return executeErr(r.cb, func() error { return r.inner.Delete(ctx, id) })
}

func (r *CircuitBreakerRelationshipRepository) ListByContact(ctx context.Context, contactID string) ([]*entities.Relationship, error) {
	return execute(r.cb, func() ([]*entities.Relationship, error) { return r.inner.ListByContact(ctx, contactID) })
}

func (r *CircuitBreakerRelationshipRepository) ListIncident(ctx context.Context, contactID string, allowed services.TypeSet) ([]*entities.Relationship, error) {
	return execute(r.cb, func() ([]*entities.Relationship, error) { return r.inner.ListIncident(ctx, contactID, allowed) })
}

func (r *CircuitBreakerRelationshipRepository) DeleteByContact(ctx context.Context, contactID string) (int, error) {
	return execute(r.cb, func() (int, error) { return r.inner.DeleteByContact(ctx, contactID) })
}

func (r *CircuitBreakerRelationshipRepository) List(ctx context.Context) ([]*entities.Relationship, error) {
	return execute(r.cb, func() ([]*entities.Relationship, error) { return r.inner.List(ctx) })
}
