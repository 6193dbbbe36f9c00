// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/mal/diagnostic"
	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
	"github.com/spf13/viper"
)

const defaultMaxDepth = lisp.DefaultMaxDepth

var envKeyReplacer = strings.NewReplacer("-", "_")

// settings holds the resolved configuration for a command.
type settings struct {
	maxDepth    int
	prompt      string
	historyFile string
	profile     string
	profileFile string
	color       diagnostic.ColorMode
}

func loadSettings(v *viper.Viper, color string) (*settings, error) {
	mode, err := diagnostic.ParseColorMode(color)
	if err != nil {
		return nil, err
	}
	s := &settings{
		maxDepth:    v.GetInt(keyMaxDepth),
		prompt:      v.GetString(keyPrompt),
		historyFile: v.GetString(keyHistoryFile),
		profile:     strings.ToLower(v.GetString(keyProfile)),
		profileFile: v.GetString(keyProfileFile),
		color:       mode,
	}
	if s.maxDepth < 0 {
		return nil, fmt.Errorf("invalid %s: %d", keyMaxDepth, s.maxDepth)
	}
	if !validProfile(s.profile) {
		return nil, fmt.Errorf("unknown profile: %q", s.profile)
	}
	return s, nil
}

// newEnv returns a root environment with the library loaded and the runtime
// configured from s.  The readline builtin prompts on stdout.
func (s *settings) newEnv(stdin io.Reader, stdout, stderr io.Writer) (*lisp.LEnv, error) {
	env := lisp.NewEnv(nil)
	err := env.Configure(
		lisp.WithLineReader(lisp.NewLineReader(stdin, stdout)),
		lisp.WithStdout(stdout),
		lisp.WithStderr(stderr),
		lisp.WithMaxDepth(s.maxDepth),
	)
	if err != nil {
		return nil, err
	}
	if err := lisplib.LoadLibrary(env); err != nil {
		return nil, fmt.Errorf("library initialization failure: %w", err)
	}
	return env, nil
}

func (s *settings) renderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: s.color}
}

func (s *settings) renderError(w io.Writer, err error, notes ...string) {
	_ = s.renderer().RenderError(w, err, notes...)
}
