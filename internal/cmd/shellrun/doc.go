// Package shellrun wires config, store and shell into the interactive
// sched process, and defines the builtin command set.
package shellrun
