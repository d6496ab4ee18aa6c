// Package shell implements the interactive command loop.
//
// The shell owns no storage semantics. It tokenizes input lines, routes the
// first token to a dynamically registered sub-command and reports failures
// without exiting; EOF ends the loop and flushes history.
package shell
