package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// DefaultPoolSize bounds how many chats are served at once.
const DefaultPoolSize = 16

// Dispatcher serves different chats in parallel on a worker pool while
// keeping the messages of one chat in arrival order. At most one worker drains
// a given chat at a time.
type Dispatcher struct {
	handler MessageHandler
	pool    *ants.Pool
	logger  *slog.Logger

	mu       sync.Mutex
	queues   map[int64][]queued
	released bool
	wg       sync.WaitGroup
}

type queued struct {
	ctx context.Context
	msg IncomingMessage
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	poolSize int
	logger   *slog.Logger
}

// WithPoolSize sets the number of workers.
// Default is DefaultPoolSize.
func WithPoolSize(size int) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.poolSize = size
	}
}

// WithDispatcherLogger sets a custom logger.
// Default is slog.Default().
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = logger
	}
}

// NewDispatcher creates a dispatcher feeding handler.
func NewDispatcher(handler MessageHandler, opts ...DispatcherOption) (*Dispatcher, error) {
	if handler == nil {
		return nil, ErrHandlerRequired
	}
	o := dispatcherOptions{poolSize: DefaultPoolSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.poolSize <= 0 {
		o.poolSize = DefaultPoolSize
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		handler: handler,
		pool:    pool,
		logger:  o.logger.With("component", "dispatcher"),
		queues:  make(map[int64][]queued),
	}, nil
}

// Dispatch queues a message behind earlier messages of the same chat.
func (d *Dispatcher) Dispatch(ctx context.Context, msg IncomingMessage) error {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return ErrDispatcherReleased
	}
	pending, draining := d.queues[msg.ChatID]
	d.queues[msg.ChatID] = append(pending, queued{ctx: ctx, msg: msg})
	if draining {
		d.mu.Unlock()
		return nil
	}
	d.wg.Add(1)
	d.mu.Unlock()

	if err := d.pool.Submit(func() { d.drain(msg.ChatID) }); err != nil {
		d.mu.Lock()
		delete(d.queues, msg.ChatID)
		d.mu.Unlock()
		d.wg.Done()
		d.logger.Error("error submitting chat", "chat_id", msg.ChatID, "err", err)
		return err
	}
	return nil
}

// Wait blocks until every queued message has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Release waits for queued messages and stops the worker pool.
func (d *Dispatcher) Release() {
	d.mu.Lock()
	d.released = true
	d.mu.Unlock()
	d.wg.Wait()
	d.pool.Release()
}

func (d *Dispatcher) drain(chatID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		pending := d.queues[chatID]
		if len(pending) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		next := pending[0]
		d.queues[chatID] = pending[1:]
		d.mu.Unlock()

		d.handle(next)
	}
}

func (d *Dispatcher) handle(q queued) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic handling message", "chat_id", q.msg.ChatID, "panic", r)
		}
	}()
	if err := d.handler.Handle(q.ctx, q.msg); err != nil {
		d.logger.Error("error handling message", "chat_id", q.msg.ChatID, "err", err)
	}
}
