// Package protocol groups the wire layers spoken with the co-processor.
//
// Ownership boundary:
// - frame: SLIP framing and the CRC16 trailer
// - packet: command header, padded arguments and the argument cursor
// - value: tagged (kind, name, payload) values for web replies and forms
package protocol
