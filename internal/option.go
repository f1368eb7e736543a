package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	assumeYes  bool
	dryRun     bool
	skipTitles bool
	skipSyntax bool
	version    string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithIO replaces the standard streams. out receives console output and
// errOut receives JSON logs.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *application) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithAssumeYes skips the confirmation prompt.
func WithAssumeYes(yes bool) Option {
	return func(a *application) {
		a.assumeYes = yes
	}
}

// WithDryRun reports what would change without writing.
func WithDryRun(dry bool) Option {
	return func(a *application) {
		a.dryRun = dry
	}
}

// WithPasses restricts a repair to the title pass, the syntax pass or both.
func WithPasses(titles, syntax bool) Option {
	return func(a *application) {
		a.skipTitles, a.skipSyntax = !titles, !syntax
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
