// Package source defines the contract between the pipeline and a remote
// media host: resolving a locator to metadata with selected streams, and
// opening those streams for download.
//
// The selection rules (best video-only stream, best audio-only stream, mp4
// preferred) and the retrying downloader live here so every host adapter
// shares them. Host adapters live in subpackages.
package source
