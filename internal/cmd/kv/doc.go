// Package kv provides the CLI commands for reading, writing, removing,
// and watching entries. Commands are constructed against a Factory so
// the binary decides how the engine and its store are opened.
package kv
