// Package config loads the convert.yaml project file.
//
// A project file is optional. Every key has a default, and the command line
// layers flags and CONVERT_* environment variables over the file before the
// result reaches the generator.
//
//	version: "1"
//	patterns: ["./..."]
//	tag: convert
//	file_suffix: _convert.go
//	fallible_prefix: Try
//	wrappers:
//	  optional: [Option, Optional]
//	  sequence: [List]
//	  map: [Dict]
//	comments: false
//	log:
//	  level: info
//	  format: console
package config
