// Package vfs provides virtual file streams for the player.
//
// A Registry routes URIs to backends (local files, in-memory objects,
// HTTP resources) and hands back a *File the caller owns until Close.
// On top of any stream the package offers byte and line helpers,
// fixed-width integer reads in either byte order, and GetContents,
// which materialises a whole resource in memory whether or not the
// backend can seek.
//
// Nothing here locks: a *File is a single cursor and callers that
// share one across goroutines must serialise access themselves.
package vfs
