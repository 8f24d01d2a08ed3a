package mockwire

import (
	"context"
	"sync"
	"sync/atomic"
)

// sessionKey carries the substitution session token on a context.
type sessionKey struct{}

// sessionCounter issues process-unique session tokens.
var sessionCounter atomic.Uint64

// sessionToken returns the token for the current substitution session,
// starting a new session when the context carries none. Every call that the
// hook makes back into the encoder reuses the same context, so recursive
// re-entry presents the same token while an independent concurrent attempt
// presents a fresh one.
func sessionToken(ctx context.Context) (uint64, context.Context) {
	if tok, ok := ctx.Value(sessionKey{}).(uint64); ok {
		return tok, ctx
	}
	tok := sessionCounter.Add(1)
	return tok, context.WithValue(ctx, sessionKey{}, tok)
}

// guard is the per-proxy reentrancy gate. At most one substitution session
// holds it at a time; re-entry by the holding session is reported as
// recursion, and other sessions wait for release rather than being
// conflated with it.
//
// A guard lives only while its proxy is being substituted: when the holder
// exits and no session is waiting, the guard retires and must be dropped
// from whatever table holds it. A retired guard refuses entry; callers
// re-acquire through the table, which hands out a fresh guard.
type guard struct {
	mu      sync.Mutex
	cond    *sync.Cond
	active  bool
	owner   uint64
	waiters int
	retired bool
}

func newGuard() *guard {
	g := &guard{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// enter attempts to claim the guard for the given session token. ok is
// false when the token already holds the guard, the recursion signal. A
// different session blocks until the holder exits, then claims it. retired
// reports that the guard left its table while the caller was arriving; the
// caller must re-acquire.
func (g *guard) enter(token uint64) (ok, retired bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		if g.retired {
			return false, true
		}
		if !g.active {
			g.active = true
			g.owner = token
			return true, false
		}
		if g.owner == token {
			return false, false
		}
		g.waiters++
		g.cond.Wait()
		g.waiters--
	}
}

// exit releases the guard. Only the holding session may call it; enter and
// exit pair via defer so release happens on every path. The return value
// reports retirement: true means the guard went idle with no waiters and
// the caller must remove it from the table.
func (g *guard) exit(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active || g.owner != token {
		return false
	}
	g.active = false
	g.owner = 0
	if g.waiters == 0 {
		g.retired = true
		return true
	}
	g.cond.Broadcast()
	return false
}
