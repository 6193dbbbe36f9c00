// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys.  Each key may be set in the config file or with a MAL_
// environment variable (e.g. MAL_MAX_DEPTH).
const (
	keyMaxDepth    = "max-depth"
	keyHistoryFile = "history-file"
	keyPrompt      = "prompt"
	keyProfile     = "profile"
	keyProfileFile = "profile-file"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mal",
	Short: "mal: Make-A-Lisp interpreter",
	Long: `mal is a small Clojure-flavored Lisp interpreter implemented in Go.

Getting started:
  mal run file.mal arg...      Run a source file with *ARGV* bound to args
  mal run -e '(+ 1 2)'         Evaluate an expression
  mal run -p -e '(+ 1 2)'      Evaluate an expression and print the result
  mal repl                     Start an interactive REPL
  mal doc map                  Show documentation for a function
  mal doc                      List every documented symbol

Language overview:
  Symbols are bound with (def! name value) and (let* (name value ...) body).
  Functions are created with (fn* (params) body); a parameter list may end
  with & rest.  Macros are defined with defmacro! and expanded with
  macroexpand.  Errors are thrown with (throw value) and handled with
  (try* expr (catch* e handler)).

Configuration is read from $HOME/.mal.yaml (or --config) and from MAL_*
environment variables:
  max-depth      maximum evaluation depth (default 10000)
  prompt         REPL prompt (default "user> ")
  history-file   REPL history file (default $HOME/.mal_history)
  profile        none, otel, opencensus, pprof or callgrind
  profile-file   output file for the pprof and callgrind profiles`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mal.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().String(keyProfile, "none",
		"Profile evaluation: none, otel, opencensus, pprof or callgrind.")
	rootCmd.PersistentFlags().String(keyProfileFile, "",
		"Output file for the pprof and callgrind profiles.")
	_ = viper.BindPFlag(keyProfile, rootCmd.PersistentFlags().Lookup(keyProfile))
	_ = viper.BindPFlag(keyProfileFile, rootCmd.PersistentFlags().Lookup(keyProfileFile))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyMaxDepth, defaultMaxDepth)
	v.SetDefault(keyPrompt, "user> ")
	v.SetDefault(keyHistoryFile, defaultHistoryFile())
	v.SetDefault(keyProfile, profileNone)
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mal_history")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".mal" (without extension).
			viper.AddConfigPath(home)
			viper.SetConfigName(".mal")
		}
	}

	viper.SetEnvPrefix("mal")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv() // read in environment variables that match

	err := viper.ReadInConfig()
	if err != nil && cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
