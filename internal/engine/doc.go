// Package engine contains the core detection logic of camel-leaked. It maps
// diff or plain text onto (file, line) coordinates, runs the rule matcher and
// the entropy detector on each line and returns findings in source order.
// It also walks working trees for content scans. This package is internal;
// external consumers should use the stable facade in pkg/core.
package engine
