// Package channel owns the host side of the co-processor command link.
//
// Ownership boundary:
// - one outbound packet open at a time (Request, RequestArg, Finalize)
// - blocking reply wait and the sync handshake
// - the packet handler chain that shares the inbound callback slot
//
// A Client is driven from a single goroutine. Only raw frame reads run on
// a helper goroutine; decoding, dispatch and every handler callback happen
// on the goroutine calling Run, WaitReturn or Sync.
package channel
