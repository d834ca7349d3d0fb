// Package logging provides JSON file logging with rotation for percolated,
// with an optional stderr mirror.
//
// `percolated serve` always writes its log to the file path in its
// configuration (by default ~/.percolated/logs/server.log); the --debug
// flag raises the level to debug rather than turning file logging on.
package logging
