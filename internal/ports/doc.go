// Package ports defines the interfaces that connect the capture pipeline to
// infrastructure adapters.
//
// The pipeline core (ring, acquire, archive, encodepool, session) depends
// only on these interfaces. Concrete implementations live under
// internal/adapters (file system, ffmpeg, simulated source, zerolog).
//
// # Port Interfaces
//
//   - [FrameSource]: the physical capture device
//   - [FrameStore]: per-frame disk persistence
//   - [Encoder]: the external video encoder
//   - [ManifestRepository]: the chunk path list handed from pool to session
//   - [Logger]: structured logging abstraction
//
// Keeping the device and the encoder behind ports lets the concurrency core
// be exercised in tests with in-memory fakes.
package ports
