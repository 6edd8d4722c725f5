// Package middleware decorates a SessionStore with at-rest concerns:
// redacting caller data extracted into the frame store, or encrypting
// the whole session state. Middlewares compose; the engine only ever
// sees the plain ports.SessionStore interface.
package middleware

import "github.com/framelab/scenic/pkg/ports"

// Middleware wraps a SessionStore to add behavior around it.
type Middleware func(ports.SessionStore) ports.SessionStore

// Wrap applies the middlewares to the store. The first middleware ends
// up outermost: Wrap(s, a, b) handles a request as a -> b -> s.
func Wrap(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
