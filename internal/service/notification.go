package service

import (
	"context"
	"fmt"
	"log/slog"

	"crm/internal/domain"
	"crm/internal/observability"
	"crm/internal/store"
	"crm/internal/util"
	"crm/internal/worker"
)

type AuditStore interface {
	InsertNotification(ctx context.Context, in store.NotificationInsert) (int64, error)
	ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error)
}

type AudienceResolver interface {
	ResolveAudience(ctx context.Context, sel domain.AudienceSelector) ([]domain.Recipient, error)
}

// ReadyChecker is the gateway's connection state, queried once per broadcast.
type ReadyChecker interface {
	Ready() bool
}

type DispatchMode string

const (
	// ModeSync answers after every recipient has been attempted.
	ModeSync DispatchMode = "sync"
	// ModeAsync answers with the job id and total; the summary is read later.
	ModeAsync DispatchMode = "async"
)

type NotificationService struct {
	Audit      AuditStore
	Audience   AudienceResolver
	Gateway    ReadyChecker
	Dispatcher *worker.Dispatcher
	Jobs       *worker.Registry
	Mode       DispatchMode

	// BaseCtx outlives requests so async jobs survive the response. It is
	// cancelled on shutdown.
	BaseCtx context.Context
	IDGen   func() string
}

type BroadcastResult struct {
	ID      string
	Async   bool
	Total   int
	Summary domain.DispatchSummary
}

// Broadcast records the request, resolves the audience and delivers the
// message to each recipient in turn. Request-level failures return before any
// message is sent; recipient failures only show up in the summary.
func (s *NotificationService) Broadcast(ctx context.Context, req domain.BroadcastRequest) (BroadcastResult, error) {
	if err := req.Validate(); err != nil {
		observability.Broadcasts.WithLabelValues("invalid").Inc()
		return BroadcastResult{}, err
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = util.NowUTC()
	}

	auditID, err := s.Audit.InsertNotification(ctx, store.NotificationInsert{
		Message:    req.Message,
		TargetType: req.Audience.String(),
		CreatedBy:  req.RequestedBy,
		Now:        req.CreatedAt,
	})
	if err != nil {
		observability.Broadcasts.WithLabelValues("audit_error").Inc()
		return BroadcastResult{}, fmt.Errorf("%w: %w", domain.ErrAuditPersistence, err)
	}

	recipients, err := s.Audience.ResolveAudience(ctx, req.Audience)
	if err != nil {
		observability.Broadcasts.WithLabelValues("audience_error").Inc()
		return BroadcastResult{}, err
	}

	if s.Gateway != nil && !s.Gateway.Ready() {
		observability.Broadcasts.WithLabelValues("gateway_not_ready").Inc()
		return BroadcastResult{}, domain.ErrGatewayNotReady
	}

	id := s.newID()
	slog.Info("broadcast accepted",
		"broadcast_id", id,
		"notification_id", auditID,
		"target_type", req.Audience.String(),
		"requested_by", req.RequestedBy,
		"recipients", len(recipients),
		"mode", string(s.mode()),
	)

	job := worker.StartJob(s.baseCtx(), s.Dispatcher, id, req.Message, recipients)
	if s.Jobs != nil {
		s.Jobs.Put(job)
	}

	res := BroadcastResult{ID: id, Total: len(recipients)}
	if s.mode() == ModeAsync {
		observability.Broadcasts.WithLabelValues("accepted").Inc()
		res.Async = true
		return res, nil
	}

	sum, err := job.Wait(ctx)
	if err != nil {
		// caller went away; the job carries on and stays queryable by id
		return res, err
	}
	observability.Broadcasts.WithLabelValues("completed").Inc()
	res.Summary = sum
	return res, nil
}

// GetBroadcast returns the progress of a recent broadcast.
func (s *NotificationService) GetBroadcast(id string) (worker.JobStatus, bool) {
	if s.Jobs == nil {
		return worker.JobStatus{}, false
	}
	j, ok := s.Jobs.Get(id)
	if !ok {
		return worker.JobStatus{}, false
	}
	return j.Status(), true
}

func (s *NotificationService) ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.Audit.ListNotifications(ctx, limit)
}

func (s *NotificationService) mode() DispatchMode {
	if s.Mode == ModeAsync {
		return ModeAsync
	}
	return ModeSync
}

func (s *NotificationService) baseCtx() context.Context {
	if s.BaseCtx != nil {
		return s.BaseCtx
	}
	return context.Background()
}

func (s *NotificationService) newID() string {
	if s.IDGen != nil {
		return s.IDGen()
	}
	return util.NewBroadcastID()
}
