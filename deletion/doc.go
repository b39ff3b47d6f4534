// Package deletion defers GPU shader deletion to the goroutine that owns
// the graphics context.
//
// A shader handle can only be destroyed by the context that created it, and
// only while that context is current. Code that drops a handle on any other
// goroutine (a loader, an invalidation worker, a Close called from
// application code) enqueues it instead:
//
//	deletion.Default().Enqueue(ctxID, handle)
//
// The render loop of that context later drains the queue under a time
// budget so that a burst of releases (for example a scene teardown) cannot
// stall a frame:
//
//	remaining := deletion.Default().Flush(ctxID, driver, 2*time.Millisecond)
//
// When the context itself is destroyed its handles are already gone on the
// GPU side; [Registry.Discard] drops them without issuing any calls.
//
// # Thread Safety
//
// Enqueue may be called concurrently from any goroutine. Flush and Discard
// for a given context must only be called by the goroutine that owns it;
// they are safe against concurrent Enqueue but not against each other.
package deletion
