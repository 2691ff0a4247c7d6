// Package camelleaked provides the command-line interface for camel-leaked.
// It wires subcommands (scan, scan-files, rules, baseline, review, ...),
// resolves flags against config files, and maps outcomes to exit codes.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/camel-leaked/camel-leaked/cmd/camelleaked"
//	func main() { camelleaked.Execute() }
package camelleaked
