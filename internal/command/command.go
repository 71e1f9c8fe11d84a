package command

// Result holds the outcome of one command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err is set when the command could not be invoked at all
	// (binary missing, transport failure). A command that ran and
	// exited non-zero has Err nil and ExitCode set.
	Err error
}

// Runner executes commands on a target host, locally or remotely.
type Runner interface {
	Run(name string, args ...string) Result
	// CheckOutput runs the command and returns its stdout, failing
	// if the command could not run or exited non-zero.
	CheckOutput(name string, args ...string) (string, error)
}
