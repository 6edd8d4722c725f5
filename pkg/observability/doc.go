/*
Package observability turns the engine's lifecycle hooks into an event
stream for real-time monitoring and audit trails.

A Stream adapts hook callbacks into a buffered channel of flattened
Events; Aggregate merges the streams of several engines into a single
view. Both sides are decoupled from the session goroutine, so a slow
or absent consumer never stalls a conversation.
*/
package observability
