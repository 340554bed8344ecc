// Package main hosts the torrentai CLI entrypoint and command graph.
//
// The Cobra-based command tree covers one-shot searches run in-process,
// direct magnet downloads, transfer status, daemon control over the HTTP
// API, and configuration scaffolding. It centralizes configuration
// resolution and logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags
// here.
package main
