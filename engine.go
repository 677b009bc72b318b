package matching

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// Engine routes requests to per-security workers. Each worker processes its
// security's requests in arrival order; a shared lock around request
// handling keeps broker credit and shareholder positions, which span
// securities, consistent.
type Engine struct {
	isShutdown atomic.Bool
	workers    sync.Map
	handlers   *Handlers
	handlersMu sync.Mutex
	serializer protocol.Serializer
}

// NewEngine creates an engine around the given handlers.
func NewEngine(handlers *Handlers) *Engine {
	return &Engine{
		handlers:   handlers,
		serializer: &protocol.DefaultJSONSerializer{},
	}
}

// AddSecurity registers a security and starts its worker.
func (e *Engine) AddSecurity(security *Security) error {
	if e.isShutdown.Load() {
		return ErrShutdown
	}
	if _, exists := e.workers.Load(security.ISIN); exists {
		logger.Warn("security already registered", zap.String("isin", security.ISIN))
		return nil
	}

	worker := newSecurityWorker(security.ISIN, e)
	e.workers.Store(security.ISIN, worker)
	go func() {
		_ = worker.start()
	}()
	return nil
}

// EnqueueRequest routes a request envelope to the worker of its security.
// Returns ErrShutdown while shutting down and ErrNotFound for an
// unregistered security.
func (e *Engine) EnqueueRequest(ctx context.Context, req *protocol.Request) error {
	if e.isShutdown.Load() {
		return ErrShutdown
	}
	if len(req.SecurityISIN) == 0 {
		return ErrInvalidParam
	}

	value, found := e.workers.Load(req.SecurityISIN)
	if !found {
		return ErrNotFound
	}
	worker, _ := value.(*securityWorker)
	return worker.enqueue(ctx, req)
}

// EnterOrder submits a new-order or update request asynchronously.
func (e *Engine) EnterOrder(ctx context.Context, rq *protocol.EnterOrderRq) error {
	bytes, err := e.serializer.Marshal(rq)
	if err != nil {
		return err
	}
	return e.EnqueueRequest(ctx, &protocol.Request{
		SecurityISIN: rq.SecurityISIN,
		Type:         protocol.ReqEnterOrder,
		Payload:      bytes,
	})
}

// DeleteOrder submits a cancel request asynchronously.
func (e *Engine) DeleteOrder(ctx context.Context, rq *protocol.DeleteOrderRq) error {
	bytes, err := e.serializer.Marshal(rq)
	if err != nil {
		return err
	}
	return e.EnqueueRequest(ctx, &protocol.Request{
		SecurityISIN: rq.SecurityISIN,
		Type:         protocol.ReqDeleteOrder,
		Payload:      bytes,
	})
}

// ChangeMatchingState submits a state-change request asynchronously.
func (e *Engine) ChangeMatchingState(ctx context.Context, rq *protocol.ChangeMatchingStateRq) error {
	bytes, err := e.serializer.Marshal(rq)
	if err != nil {
		return err
	}
	return e.EnqueueRequest(ctx, &protocol.Request{
		SecurityISIN: rq.SecurityISIN,
		Type:         protocol.ReqChangeMatchingState,
		Payload:      bytes,
	})
}

// Shutdown stops accepting requests and blocks until every worker drained
// its queue or the context is cancelled.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.isShutdown.Store(true)

	var wg sync.WaitGroup
	var errs []error
	var errMu sync.Mutex

	e.workers.Range(func(key, value any) bool {
		wg.Add(1)
		go func(worker *securityWorker) {
			defer wg.Done()
			if err := worker.shutdown(ctx); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(value.(*securityWorker))
		return true
	})

	wg.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// securityWorker processes one security's requests sequentially.
type securityWorker struct {
	isin             string
	isShutdown       atomic.Bool
	reqChan          chan *protocol.Request
	done             chan struct{}
	shutdownComplete chan struct{}
	engine           *Engine
}

func newSecurityWorker(isin string, engine *Engine) *securityWorker {
	return &securityWorker{
		isin:             isin,
		reqChan:          make(chan *protocol.Request, 32768),
		done:             make(chan struct{}),
		shutdownComplete: make(chan struct{}),
		engine:           engine,
	}
}

// enqueue hands a request to the worker, waiting for channel space until the
// context expires.
func (w *securityWorker) enqueue(ctx context.Context, req *protocol.Request) error {
	if w.isShutdown.Load() {
		return ErrShutdown
	}

	select {
	case w.reqChan <- req:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// start runs the worker loop. Returns nil when shutdown() is called and all
// pending requests are drained.
func (w *securityWorker) start() error {
	for {
		select {
		case <-w.done:
			return w.drain()
		case req := <-w.reqChan:
			w.process(req)
		}
	}
}

// shutdown signals the worker to stop and waits until its queue is drained
// or the context is cancelled.
func (w *securityWorker) shutdown(ctx context.Context) error {
	if w.isShutdown.CompareAndSwap(false, true) {
		close(w.done)
	}

	select {
	case <-w.shutdownComplete:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain processes all remaining requests before returning.
func (w *securityWorker) drain() error {
	defer close(w.shutdownComplete)

	for {
		select {
		case req := <-w.reqChan:
			w.process(req)
		default:
			return nil
		}
	}
}

func (w *securityWorker) process(req *protocol.Request) {
	w.engine.handlersMu.Lock()
	defer w.engine.handlersMu.Unlock()

	switch req.Type {
	case protocol.ReqEnterOrder:
		rq := &protocol.EnterOrderRq{}
		if err := w.engine.serializer.Unmarshal(req.Payload, rq); err != nil {
			logger.Error("failed to unmarshal enter-order request",
				zap.String("isin", w.isin), zap.Error(err))
			return
		}
		w.engine.handlers.HandleEnterOrder(rq)
	case protocol.ReqDeleteOrder:
		rq := &protocol.DeleteOrderRq{}
		if err := w.engine.serializer.Unmarshal(req.Payload, rq); err != nil {
			logger.Error("failed to unmarshal delete-order request",
				zap.String("isin", w.isin), zap.Error(err))
			return
		}
		w.engine.handlers.HandleDeleteOrder(rq)
	case protocol.ReqChangeMatchingState:
		rq := &protocol.ChangeMatchingStateRq{}
		if err := w.engine.serializer.Unmarshal(req.Payload, rq); err != nil {
			logger.Error("failed to unmarshal state-change request",
				zap.String("isin", w.isin), zap.Error(err))
			return
		}
		w.engine.handlers.HandleChangeMatchingState(rq)
	default:
		logger.Warn("unknown request type",
			zap.String("isin", w.isin), zap.Uint8("type", uint8(req.Type)))
	}
}
