package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"crm/internal/domain"
	"crm/internal/observability"
	"crm/internal/providers/whatsapp"
	"crm/internal/util"
)

type Sender interface {
	Send(ctx context.Context, destination, message string) (whatsapp.SendResponse, error)
}

// Dispatcher delivers one broadcast at a time, strictly in audience order.
type Dispatcher struct {
	Sender      Sender
	Pacer       Pacer
	Limiter     *rate.Limiter
	Breaker     *gobreaker.CircuitBreaker
	CallTimeout time.Duration

	// one broadcast owns the gateway session at a time
	mu sync.Mutex
}

const errDispatchCancelled = "dispatch cancelled"

// Run sends message to every recipient and returns one outcome per recipient,
// in order. Gateway failures are recorded and never stop the loop. If ctx is
// cancelled mid-run the remaining recipients are recorded as failed.
func (d *Dispatcher) Run(ctx context.Context, broadcastID, message string, recipients []domain.Recipient, onOutcome func(domain.DispatchOutcome)) []domain.DispatchOutcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	observability.DispatchInFlight.Inc()
	defer observability.DispatchInFlight.Dec()

	log := slog.With("broadcast_id", broadcastID)
	log.Info("dispatch start", "recipients", len(recipients))
	start := time.Now()

	outcomes := make([]domain.DispatchOutcome, 0, len(recipients))
	record := func(o domain.DispatchOutcome) {
		outcomes = append(outcomes, o)
		if onOutcome != nil {
			onOutcome(o)
		}
	}

	for i, r := range recipients {
		if i > 0 && d.Pacer != nil {
			if err := d.Pacer.Wait(ctx); err != nil {
				for _, rest := range recipients[i:] {
					record(domain.DispatchOutcome{Recipient: rest.Destination, Status: domain.OutcomeFailed, Error: errDispatchCancelled})
				}
				break
			}
		}
		record(d.sendOne(ctx, log, r, message))
	}

	sum := domain.BuildSummary(outcomes)
	log.Info("dispatch finished",
		"total", sum.Total,
		"sent", sum.Sent,
		"failed", sum.Failed,
		"duration", time.Since(start),
	)
	return outcomes
}

func (d *Dispatcher) sendOne(ctx context.Context, log *slog.Logger, r domain.Recipient, message string) domain.DispatchOutcome {
	out := domain.DispatchOutcome{Recipient: r.Destination}

	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			observability.GatewaySend.WithLabelValues("rate_limited_local").Inc()
			out.Status, out.Error = domain.OutcomeFailed, err.Error()
			return out
		}
	}

	start := time.Now()
	_, err := d.execute(ctx, r.Destination, message)
	observability.GatewayLatency.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		observability.GatewaySend.WithLabelValues("ok").Inc()
		out.Status = domain.OutcomeSent
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		observability.GatewaySend.WithLabelValues("cb_open").Inc()
		out.Status, out.Error = domain.OutcomeFailed, err.Error()
	case whatsapp.IsInvalidDestination(err):
		observability.GatewaySend.WithLabelValues("invalid_destination").Inc()
		out.Status, out.Error = domain.OutcomeFailed, err.Error()
	default:
		observability.GatewaySend.WithLabelValues("error").Inc()
		out.Status, out.Error = domain.OutcomeFailed, err.Error()
	}

	if out.Status == domain.OutcomeFailed {
		log.Warn("recipient send failed", "recipient", util.MaskPhone(r.Destination), "err", out.Error)
	}
	return out
}

func (d *Dispatcher) execute(ctx context.Context, to, body string) (whatsapp.SendResponse, error) {
	call := func() (any, error) {
		callCtx := ctx
		if d.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, d.CallTimeout)
			defer cancel()
		}
		return d.Sender.Send(callCtx, to, body)
	}

	if d.Breaker == nil {
		res, err := call()
		resp, _ := res.(whatsapp.SendResponse)
		return resp, err
	}
	res, err := d.Breaker.Execute(call)
	resp, _ := res.(whatsapp.SendResponse)
	return resp, err
}

type BreakerSettings struct {
	Name                string
	MaxConsecutiveFails uint32
	OpenTimeout         time.Duration
}

// NewBreaker builds the gateway breaker. Rejected destinations never count
// as failures.
func NewBreaker(s BreakerSettings) *gobreaker.CircuitBreaker {
	maxFails := s.MaxConsecutiveFails
	if maxFails == 0 {
		maxFails = 10
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= maxFails },
		IsSuccessful: func(err error) bool {
			return err == nil || whatsapp.IsInvalidDestination(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("gateway breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}
