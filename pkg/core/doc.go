// Package core is the stable import path for programs that embed
// camel-leaked. It wraps rule loading and the detection engine behind a
// small API.
//
//	s, err := core.NewScanner(core.Options{})
//	if err != nil { /* handle */ }
//	findings := s.ScanDiff(patch)
//	_ = core.WriteJSON(os.Stdout, findings)
package core
