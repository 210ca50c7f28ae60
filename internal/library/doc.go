// Package library moves finished outputs into the library directory.
//
// Outputs are encoded inside the temp directory and only moved into place
// once validated, so the library never holds a partial file. Moves fall back
// to copy-and-remove across filesystems. Existing files are either replaced
// or kept, in which case the new file gets a numeric suffix.
package library
