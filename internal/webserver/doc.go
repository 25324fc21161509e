// Package webserver serves the co-processor's web UI from the host.
//
// Ownership boundary:
// - URL to handler bindings
// - web request demultiplexing by reason (load, refresh, button, submit)
// - reply assembly from tagged values
//
// The co-processor forgets the host's interest in web events when it
// resets. Callers re-send it with RegisterCallback on a fixed interval,
// typically through channel.Client.Every.
package webserver
