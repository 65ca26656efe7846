package kvserver

import (
	"log/slog"

	"github.com/predkv/predkv/internal/core/domain"
	"github.com/predkv/predkv/internal/core/query"
	"github.com/predkv/predkv/internal/storage/memory"
	"github.com/predkv/predkv/internal/telemetry/metric"
)

// Dispatcher routes decoded requests to store and query operations and
// shapes the outcome into a Response. Every failure a client can
// trigger maps to one of the fixed domain error messages; anything
// unexpected (including a panic in a handler) becomes the generic
// internal error so server faults are distinguishable from request
// faults.
type Dispatcher struct {
	store   *memory.Store
	exec    *query.Executor
	logger  *slog.Logger
	metrics *metric.Metrics
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(store *memory.Store, logger *slog.Logger, metrics *metric.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:   store,
		exec:    query.NewExecutor(store),
		logger:  logger,
		metrics: metrics,
	}
}

// Dispatch executes one request and always returns a response to send.
func (d *Dispatcher) Dispatch(req *domain.Request) (resp *domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic while handling request", "type", req.Type.String(), "panic", r)
			resp = domain.Fail(domain.ErrInternal)
		}
		if d.metrics != nil {
			d.metrics.ObserveRequest(req.Type.String(), resp.Success)
			d.metrics.EntriesLive.Set(float64(d.store.Len()))
		}
	}()

	switch req.Type {
	case domain.TypeRead:
		return d.handleRead(req)
	case domain.TypeAdd:
		return d.handleAdd(req)
	case domain.TypeDelete:
		return d.handleDelete(req)
	case domain.TypeQuery:
		return d.handleQuery(req)
	default:
		return domain.Fail(domain.ErrUnknownRequestType)
	}
}

func (d *Dispatcher) handleRead(req *domain.Request) *domain.Response {
	if req.Key == nil {
		return domain.Fail(domain.ErrEntryNotFound)
	}
	val, ok := d.store.Get(*req.Key)
	if !ok {
		return domain.Fail(domain.ErrEntryNotFound)
	}
	return domain.OK([]domain.Entry{{Key: *req.Key, Value: val}})
}

func (d *Dispatcher) handleAdd(req *domain.Request) *domain.Response {
	if req.Key == nil || req.Value == nil {
		return domain.Fail(domain.ErrEntryAddFailed)
	}
	d.store.Set(*req.Key, *req.Value)
	return domain.OK([]domain.Entry{{Key: *req.Key, Value: *req.Value}})
}

func (d *Dispatcher) handleDelete(req *domain.Request) *domain.Response {
	if req.Key == nil {
		return domain.Fail(domain.ErrEntryDeleteFailed)
	}
	if !d.store.Remove(*req.Key) {
		return domain.Fail(domain.ErrEntryDeleteFailed)
	}
	return domain.OK(nil)
}

func (d *Dispatcher) handleQuery(req *domain.Request) *domain.Response {
	parsed, err := query.Parse(req.Query)
	if err != nil {
		d.logger.Debug("query rejected", "query", req.Query, "error", err)
		return domain.Fail(err)
	}
	return domain.OK(d.exec.Execute(parsed))
}
