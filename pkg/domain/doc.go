// Package domain contains the core types of the scenic dialogue engine:
// scenario scripts, frames and field specs, session state, and the
// lifecycle hook contracts. It has no dependencies on the runtime or on
// any adapter, so transports and stores can share these types freely.
package domain
