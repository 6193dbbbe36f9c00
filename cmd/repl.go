// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/mal/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive mal REPL",
	Long: `Start an interactive read-eval-print loop.

The standard library is loaded automatically.  Line editing, persistent
history and symbol completion (TAB) are provided by readline.  A form that
spans several lines is continued until it is complete.  Use Ctrl-D to exit
and Ctrl-C to discard the current input.

Example REPL session:
  user> (+ 1 2)
  3
  user> (def! square (fn* (x) (* x x)))
  #<function>
  user> (square 5)
  25
  user> (doc 'map)
  ...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper(), colorFlag)
		if err != nil {
			return err
		}
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		env, err := s.newEnv(os.Stdin, stdout, stderr)
		if err != nil {
			return err
		}
		done, err := s.startProfile(env, stderr)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		err = repl.RunEnv(env,
			repl.WithStdout(stdout),
			repl.WithStderr(stderr),
			repl.WithPrompt(s.prompt),
			repl.WithHistoryFile(s.historyFile),
			repl.WithColor(s.color),
		)
		if perr := done(); perr != nil && err == nil {
			err = fmt.Errorf("profile: %w", perr)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
