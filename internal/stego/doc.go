// Package stego ties the codec, the resampler and the payload helpers into
// the file-level operations exposed by the MCP server and the CLI.
//
// It carries the caller-side duties the codec leaves out: capacity is
// checked before embedding, empty payloads are rejected (a zero length
// header never decodes), and stego images are only ever written in lossless
// formats.
//
// # Out-of-band Parameters
//
// Neither the bits per channel nor the compression flag is recorded in the
// image. Decode must be given the same values Encode used.
package stego
