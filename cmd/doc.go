// Copyright © 2021 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
	"github.com/luthersystems/mal/lisp/lisplib/libhelp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var docSourceFiles []string

// docCmd represents the doc command
var docCmd = &cobra.Command{
	Use:   "doc [flags] [SYMBOL]",
	Short: "Show mal documentation for functions and symbols",
	Long: `Show built-in documentation for special forms, functions, macros and
values.

With a SYMBOL argument its documentation is shown.  Without an argument
every documented symbol is listed with the first line of its documentation.
Use -f to load source files first (useful for documenting your own code).
A path ending in "/..." loads every .mal file below the directory.

Documentation comes from the :doc metadata of functions and macros, for
example:

  (def! square (with-meta (fn* (x) (* x x)) {:doc "Returns x squared."}))

Examples:
  mal doc map                      Show docs for the map function
  mal doc let*                     Show docs for a special form
  mal doc                          List all documented symbols
  mal doc -f mylib.mal my-func     Load a file, then show docs for my-func
  mal doc -f lib/... my-func       Load every .mal file under lib first`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper(), colorFlag)
		if err != nil {
			return err
		}
		env, err := lisplib.NewDocEnv()
		if err != nil {
			return err
		}
		files, err := expandArgs(docSourceFiles)
		if err != nil {
			return err
		}
		for _, path := range files {
			if _, err := env.LoadFile(path); err != nil {
				s.renderError(cmd.ErrOrStderr(), err)
				return errReported
			}
		}
		var query string
		if len(args) > 0 {
			query = args[0]
		}
		return docExec(cmd.OutOrStdout(), env, query)
	},
}

// docExec writes the documentation for query, or for every symbol when query
// is empty.
func docExec(w io.Writer, env *lisp.LEnv, query string) error {
	out := bufio.NewWriter(w)
	var err error
	if query == "" {
		err = libhelp.RenderAll(out, env)
	} else {
		err = libhelp.RenderVar(out, env, query)
	}
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return fmt.Errorf("doc: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(docCmd)

	// Here flags for the doc command are defined
	docCmd.Flags().StringSliceVarP(&docSourceFiles, "source-file", "f", nil,
		"Evaluate mal source files before querying documentation (presumably desired docs are in source code).")
}
