// Package domain contains the core entities of the capture pipeline.
//
// These are plain data types with no infrastructure dependencies:
//
//   - [Image]: raw pixel data handed over by a frame source
//   - [Frame]: an image plus the sequence index assigned at enqueue time
//   - [ChunkJob]: one contiguous window of persisted frames to encode
//   - [ChunkResult]: a successfully encoded chunk file
//   - [Result]: the outcome of a whole recording session
//
// Packages higher in the stack (ring, archive, encodepool, session) operate
// on these types; adapters translate them to and from the outside world.
package domain
