// Command vecid encodes, decodes, signs, verifies and hashes identity payloads.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/vecid"
)

const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
	exitAuth       = 3
)

func main() {
	loadDotEnv(".env")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

func run(args []string, in io.Reader, out, errOut io.Writer, getenv func(string) string) int {
	if len(args) == 0 {
		printUsage(errOut)
		return exitValidation
	}

	cfg, err := loadConfig(getenv)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return exitValidation
	}

	c := &cli{cfg: cfg, in: in, out: out, errOut: errOut}

	switch args[0] {
	case "encode":
		return c.exit(c.encode(args[1:]))
	case "decode":
		return c.exit(c.decode(args[1:]))
	case "sign":
		return c.exit(c.sign(args[1:]))
	case "verify":
		return c.exit(c.verify(args[1:]))
	case "hash":
		return c.exit(c.hash(args[1:]))
	case "help", "-h", "--help":
		printUsage(out)
		return exitOK
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return exitValidation
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "vecid: identity payload tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vecid encode [--tier tiny|default|large] [--optimize | --key <k>] [--format hex|binary|text] [--text <s> | <file>]")
	fmt.Fprintln(w, "  vecid decode [--format hex|binary|text] [--reconstruct] [<file>]")
	fmt.Fprintln(w, "  vecid sign [--key <k>] [--salt <s>] [--format hex|binary|text] [<file>]")
	fmt.Fprintln(w, "  vecid verify [--key <k>] [<file>]")
	fmt.Fprintln(w, "  vecid hash [--salt <s>] [--alg sha256|sha3-256] [--text <s> | <file>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input is read from <file>, or stdin when omitted or \"-\".")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment (a .env file in the working directory is loaded first):")
	fmt.Fprintln(w, "  VECID_KEY        envelope key")
	fmt.Fprintln(w, "  VECID_SALT       envelope HKDF salt")
	fmt.Fprintln(w, "  VECID_TIER       fixed tier")
	fmt.Fprintln(w, "  VECID_TRIALS     optimizer trials")
	fmt.Fprintln(w, "  VECID_LOG_LEVEL  debug|info|warn|error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 1 error, 2 invalid input or usage, 3 authentication failure")
}

// usageError marks bad flags or arguments.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, vecid.ErrAuthentication):
		return exitAuth
	case errors.Is(err, vecid.ErrValidation), errors.As(err, &ue):
		return exitValidation
	default:
		return exitError
	}
}

func (c *cli) exit(err error) int {
	if err != nil {
		fmt.Fprintf(c.errOut, "vecid: %v\n", err)
	}
	return exitCode(err)
}
