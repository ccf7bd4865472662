// Package asr owns the streaming recognition session: one websocket
// connection, the StartTask/StartSession handshake, and the two pumps that
// move encoded audio frames out and typed recognition events back in. A
// session is single-use; there is no retry, no reconnection and no timeout
// anywhere in it, so termination always comes from an explicit terminal
// event, a transmit failure, or closure of the frame queue.
package asr
