// Package websocket delivers progress and result events to live clients.
//
// The registry tracks one connection per client id. The relay subscribes to
// both bus namespaces at startup and forwards each event, verbatim, to the
// connection registered under the client id embedded in the channel name.
// Events for clients without a live connection are dropped.
package websocket
