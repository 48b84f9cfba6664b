// Package exitcodes contains the constants representing possible resproc
// exit error codes.
package exitcodes

// ExitCode is just a type representing a process exit code for resproc.
type ExitCode uint8

// List of exit codes used by resproc. Values should be between 0 and 125:
// https://unix.stackexchange.com/questions/418784/what-is-the-min-and-max-values-of-exit-codes-in-linux
const (
	GenericError     ExitCode = 100
	InvalidConfig    ExitCode = 101
	ParseFailed      ExitCode = 102
	MergeFailed      ExitCode = 103
	CrunchFailed     ExitCode = 104
	PackagingFailed  ExitCode = 105
	AssembleFailed   ExitCode = 106
	ExternalToolExit ExitCode = 107
)
