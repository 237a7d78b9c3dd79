package viewstate

import (
	"context"
	"errors"

	"github.com/ryanm101/gameshelf/internal/auth"
	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/metrics"
)

// Runtime is the foreground loop and I/O pool shared by all holders.
type Runtime struct {
	Loop *Loop
	Pool *Pool
}

// NewRuntime starts a loop and a pool of ioWorkers.
func NewRuntime(ioWorkers int) *Runtime {
	return &Runtime{Loop: NewLoop(), Pool: NewPool(ioWorkers)}
}

// Close stops the pool, then the loop.
func (r *Runtime) Close() {
	r.Pool.Close()
	r.Loop.Close()
}

// base is embedded by every holder.
type base struct {
	rt     *Runtime
	screen string
	ctx    context.Context
	cancel context.CancelFunc
}

func newBase(rt *Runtime, screen string) base {
	ctx, cancel := context.WithCancel(context.Background())
	return base{rt: rt, screen: screen, ctx: ctx, cancel: cancel}
}

// Close cancels in-flight loads. Their results are dropped.
func (b *base) Close() {
	b.cancel()
}

// Closed reports whether Close was called.
func (b *base) Closed() bool {
	return b.ctx.Err() != nil
}

// op is one operation kind of a holder: its loading flag and error message.
type op struct {
	State *Observable[LoadState]
	Err   *Observable[string]
}

func newOp() op {
	return op{State: NewObservable(Unknown), Err: NewObservable("")}
}

// load runs work on the pool unless o is already loading, and publishes the
// outcome on the loop through onResult or onError.
func load[T any](b *base, o op, work func(context.Context) (T, error), onResult func(T), onError func(error)) {
	b.rt.Loop.Post(func() {
		if b.Closed() {
			return
		}
		if o.State.Get() == Loading {
			metrics.LoadsTotal.WithLabelValues(b.screen, "dropped").Inc()
			return
		}
		o.State.Set(Loading)
		o.Err.Set("")

		ctx := b.ctx
		submitted := b.rt.Pool.Submit(func() {
			v, err := work(ctx)
			b.rt.Loop.Post(func() {
				if ctx.Err() != nil {
					metrics.LoadsTotal.WithLabelValues(b.screen, "dropped").Inc()
					return
				}
				if err != nil {
					logging.Warn("load failed", "screen", b.screen, "error", err)
					metrics.LoadsTotal.WithLabelValues(b.screen, "error").Inc()
					if onError != nil {
						onError(err)
					}
					o.Err.Set(Message(err))
				} else {
					metrics.LoadsTotal.WithLabelValues(b.screen, "ok").Inc()
					onResult(v)
				}
				o.State.Set(Idle)
			})
		})
		if !submitted {
			o.Err.Set("shutting down")
			o.State.Set(Idle)
		}
	})
}

// fail publishes a validation error without starting a load.
func fail(b *base, o op, err error) {
	b.rt.Loop.Post(func() {
		if b.Closed() {
			return
		}
		o.Err.Set(Message(err))
	})
}

// Message turns a load failure into text for the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, catalog.ErrTransport):
		return "Could not reach the game catalog. Check your connection and try again."
	case errors.Is(err, catalog.ErrStatus):
		return "The game catalog returned an error. Try again later."
	case errors.Is(err, catalog.ErrDecode):
		return "The game catalog sent a response we could not read."
	case errors.Is(err, auth.ErrMissingField), errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrEmailTaken):
		return capitalize(err.Error())
	default:
		return err.Error()
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
