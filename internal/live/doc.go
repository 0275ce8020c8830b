// Package live delivers realtime feed updates by polling the head of the
// feed and handing new or edited items to a Sink.
//
// The Sink is normally the selection controller, which applies an item at
// once or holds it until selection mode ends. A Status snapshot tracks the
// last outcome and consecutive failures for the status bar; after two
// failures the feed is reported offline and the poller backs off
// exponentially up to 30 seconds.
package live
