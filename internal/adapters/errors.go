package adapters

import "errors"

// ErrBackpressure is returned by TrySend when a client's send queue is
// full; the delivery policy decides what happens to the connection.
var ErrBackpressure = errors.New("send buffer full")
