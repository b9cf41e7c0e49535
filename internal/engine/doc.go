// Package engine broadcasts gateway events to the registered modules.
//
// Modules are invoked one at a time, in registration order, and each call is
// awaited before the next module sees the event. A failing or panicking
// module is logged and counted; it never stops the remaining modules or the
// events that follow.
package engine
