// Package protocol implements the binary envelope exchanged with the ASR
// service and the classifier that turns inbound envelopes into typed
// recognition events. The outer envelope is protobuf-framed; configuration
// and recognition results travel inside it as JSON documents. Both layers
// are a fixed external contract.
package protocol
