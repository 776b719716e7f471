package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/contactsapi/contract-tests/framework"

	"github.com/alessio/shellescape"
)

const defaultEnvFile = ".env"

type commandParams struct {
	serviceURL string
	envFile    string
	filters    framework.RegexFilters
	keepData   bool
	debug      bool
	debugAll   bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.StringVar(&c.serviceURL, "url", "", "contact service base URL (overrides CONTACTS_API_URL)")
	fs.StringVar(&c.envFile, "env-file", defaultEnvFile, "optional dotenv file to read settings from")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.keepData, "keep-data", false, "do not delete contacts at the end of tests that reset them")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand builds a shell command line that runs only the failed tests again.
func (c *commandParams) rerunCommand(program, serviceURL string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program, "-url", serviceURL)
	if c.envFile != defaultEnvFile {
		b.add("-env-file", c.envFile)
	}
	if c.keepData {
		b.add("-keep-data")
	}
	if c.debug || c.debugAll {
		b.add("-debug")
	}
	for _, f := range failures {
		b.add("-run", f.TestID.Pattern())
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
