// Package lifecycle runs shutdown hooks when the process is interrupted.
package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler receives the OS signal that triggered shutdown.
type Handler func(os.Signal)

// HandlerID identifies a registered handler.
type HandlerID int64

type registry struct {
	mu      sync.Mutex
	nextID  HandlerID
	entries []entry

	once    sync.Once
	signals chan os.Signal

	notify func(chan<- os.Signal, ...os.Signal)
	stop   func(chan<- os.Signal)
	exit   func(int)
}

type entry struct {
	id      HandlerID
	handler Handler
}

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	return &registry{
		notify: signal.Notify,
		stop:   signal.Stop,
		exit:   os.Exit,
	}
}

// Register adds a handler that runs when a shutdown signal arrives. Handlers
// run newest first; a panicking handler does not prevent the others.
func Register(handler Handler) HandlerID {
	return defaultRegistry.register(handler)
}

// Unregister removes a previously registered handler.
func Unregister(id HandlerID) {
	defaultRegistry.unregister(id)
}

func (r *registry) register(handler Handler) HandlerID {
	if handler == nil {
		return 0
	}

	r.once.Do(r.listen)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.entries = append(r.entries, entry{id: r.nextID, handler: handler})
	return r.nextID
}

func (r *registry) unregister(id HandlerID) {
	if id == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *registry) listen() {
	r.signals = make(chan os.Signal, 1)
	r.notify(r.signals, shutdownSignals...)

	go func(signals <-chan os.Signal) {
		sig, ok := <-signals
		if !ok {
			return
		}
		r.run(sig)
		r.exit(exitCode(sig))
	}(r.signals)
}

func (r *registry) run(sig os.Signal) {
	r.mu.Lock()
	snapshot := make([]entry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for i := len(snapshot) - 1; i >= 0; i-- {
		safeCall(snapshot[i].handler, sig)
	}
}

func (r *registry) close() {
	if r.signals != nil {
		r.stop(r.signals)
		close(r.signals)
	}
}

func safeCall(handler Handler, sig os.Signal) {
	defer func() {
		_ = recover()
	}()
	handler(sig)
}

func exitCode(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return 130
	case syscall.SIGTERM:
		return 143
	default:
		return 1
	}
}
