// Package cli builds the command tree of the pipe binary, translates flags
// into the application's configuration and maps usage problems to exit
// codes.
package cli
