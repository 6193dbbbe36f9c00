// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runExpression bool
	runPrint      bool
)

// errReported is returned by commands which have already written a
// diagnostic for their failure.
var errReported = errors.New("error reported")

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE [ARG...]",
	Short: "Run mal code",
	Long: `Run mal code supplied via the command line or a file.

By default the first argument names a source file which is loaded with
*ARGV* bound to a list of the remaining arguments.  With -e every argument
is evaluated as a mal expression.

Examples:
  mal run script.mal a b        Load script.mal with *ARGV* bound to ("a" "b")
  mal run -e '(def! x 2)'       Evaluate an expression
  mal run -p -e '(+ 1 2)' '(str "a" "b")'
                                Print the readable value of each expression`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper(), colorFlag)
		if err != nil {
			return err
		}
		r := &runner{
			settings: s,
			stdin:    cmd.InOrStdin(),
			stdout:   cmd.OutOrStdout(),
			stderr:   cmd.ErrOrStderr(),
		}
		if runExpression {
			return r.runExpressions(args, runPrint)
		}
		return r.runFile(args[0], args[1:])
	},
}

// runner evaluates programs for the run command.
type runner struct {
	*settings
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	sources map[string]string
}

func (r *runner) start() (*lisp.LEnv, func() error, error) {
	env, err := r.newEnv(r.stdin, r.stdout, r.stderr)
	if err != nil {
		return nil, nil, err
	}
	done, err := r.startProfile(env, r.stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("profile: %w", err)
	}
	return env, done, nil
}

// runFile loads path with *ARGV* bound to args.
func (r *runner) runFile(path string, args []string) error {
	env, done, err := r.start()
	if err != nil {
		return err
	}
	lisplib.SetArgs(env, args)
	_, err = env.LoadFile(path)
	return r.finish(done, err)
}

// runExpressions evaluates each expression in turn, stopping at the first
// error.  When printValues is true the readable form of each value is written to
// stdout.
func (r *runner) runExpressions(exprs []string, printValues bool) error {
	env, done, err := r.start()
	if err != nil {
		return err
	}
	r.sources = make(map[string]string, len(exprs))
	for i, expr := range exprs {
		name := fmt.Sprintf("<expr-%d>", i+1)
		r.sources[name] = expr
		var val *lisp.LVal
		val, err = env.LoadString(name, expr)
		if err != nil {
			break
		}
		if printValues {
			fmt.Fprintln(r.stdout, lisp.Render(val, true)) //nolint:errcheck // best-effort output
		}
	}
	return r.finish(done, err)
}

func (r *runner) finish(done func() error, err error) error {
	if perr := done(); perr != nil {
		fmt.Fprintln(r.stderr, "profile:", perr) //nolint:errcheck // best-effort output
	}
	if err == nil {
		return nil
	}
	renderer := r.renderer()
	renderer.SourceReader = r.readSource
	_ = renderer.RenderError(r.stderr, err)
	return errReported
}

func (r *runner) readSource(name string) ([]byte, error) {
	if src, ok := r.sources[name]; ok {
		return []byte(src), nil
	}
	return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as mal expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
}
