// Package payload converts between user-facing messages and the raw bytes
// embedded by package lsb.
//
// Text uses a fixed single-byte encoding: each Unicode code point becomes one
// byte holding its low 8 bits. Latin-1 text round-trips exactly; code points
// above 255 are truncated and cannot be recovered. Lossy reports when that
// would happen so callers can warn before embedding.
//
// Compression (zstd) and digests (BLAKE3) are optional caller-side
// transforms. Compression is not recorded in the frame, so the decoder must be
// told whether to decompress, in the same way it must be told the bits per
// channel.
package payload
