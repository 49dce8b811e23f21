// Package commands implements the convert-generator command line.
//
//	convert-generator generate [patterns...]   write conversion files
//	convert-generator check [patterns...]      fail when files are stale
//	convert-generator plan [patterns...]       print the resolved plans
//	convert-generator watch [patterns...]      regenerate on change
//	convert-generator version
//
// Settings come from convert.yaml, CONVERT_* environment variables and
// flags, in increasing order of precedence.
package commands
