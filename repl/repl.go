// Copyright © 2018 The ELPS authors

// Package repl implements an interactive read-eval-print loop over
// github.com/ergochat/readline.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/mal/diagnostic"
	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
)

// DefaultPrompt is the prompt displayed when reading a new form.
const DefaultPrompt = "user> "

// Banner is evaluated when an interactive session starts.
const Banner = `(println (str "Mal [" *host-language* "]"))`

// sourceName names the input of a REPL session in diagnostics.
const sourceName = "<stdin>"

type config struct {
	stdin       io.ReadCloser
	stdout      io.Writer
	stderr      io.Writer
	prompt      string
	historyFile string
	banner      bool
	color       diagnostic.ColorMode
}

func newConfig(opts ...Option) *config {
	config := &config{
		prompt:      DefaultPrompt,
		historyFile: historyPath(),
		banner:      true,
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStdout overrides the output of printing functions called in the REPL.
func WithStdout(stdout io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
	}
}

// WithStderr allows overriding the output to the REPL.  Prompts, results and
// errors are written to stderr.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithPrompt sets the prompt displayed before each form.  Continuation lines
// are prompted with spaces of the same width.
func WithPrompt(prompt string) Option {
	return func(c *config) {
		c.prompt = prompt
	}
}

// WithHistoryFile sets the file used to persist input history.  An empty
// path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithBanner controls whether the banner is printed when the session starts.
func WithBanner(banner bool) Option {
	return func(c *config) {
		c.banner = banner
	}
}

// WithColor sets the color mode used to render errors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// RunRepl runs a repl in a new environment with the standard library loaded.
func RunRepl(opts ...Option) error {
	env := lisp.NewEnv(nil)
	if err := lisplib.LoadLibrary(env); err != nil {
		return fmt.Errorf("library initialization failure: %w", err)
	}
	return RunEnv(env, opts...)
}

// RunEnv runs a repl with env as a root environment.  RunEnv returns when
// input is exhausted.
func RunEnv(env *lisp.LEnv, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("repl environment is not a root environment")
	}
	if env.Runtime.Reader == nil {
		return errors.New("repl environment has no reader")
	}

	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	if cfg.stdout != nil {
		env.Runtime.Stdout = cfg.stdout
	}
	ensureHistoryFilePermissions(cfg.historyFile)

	cont := strings.Repeat(" ", len(cfg.prompt))
	rlCfg := &readline.Config{
		Stdout:            env.Runtime.Stderr,
		Stderr:            env.Runtime.Stderr,
		Prompt:            cfg.prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	// the readline builtin shares the session's line editor
	prevLineReader := env.Runtime.LineReader
	env.Runtime.LineReader = &lineReader{rl: rl}
	defer func() { env.Runtime.LineReader = prevLineReader }()

	s := &session{
		env: env,
		out: env.Runtime.Stderr,
	}
	s.renderer = &diagnostic.Renderer{
		Color:        cfg.color,
		SourceReader: s.source,
	}

	if cfg.banner {
		if _, err := env.LoadString("banner", Banner); err != nil {
			s.renderError(err)
		}
	}

	var buf strings.Builder
	for {
		prompt := cfg.prompt
		if buf.Len() > 0 {
			prompt = cont
		}
		rl.SetPrompt(prompt)
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			continue
		}
		if err != nil {
			if buf.Len() > 0 {
				// report the incomplete form
				s.eval(buf.String())
			}
			return nil
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if s.incomplete(buf.String()) {
			continue
		}
		s.eval(buf.String())
		buf.Reset()
	}
}

// session evaluates complete input in a REPL environment.
type session struct {
	env      *lisp.LEnv
	out      io.Writer
	renderer *diagnostic.Renderer
	input    string
}

// incomplete returns true if text ends inside an unterminated form.
func (s *session) incomplete(text string) bool {
	_, err := s.env.Runtime.Reader.Read(sourceName, strings.NewReader(text))
	return lisp.IsKind(err, lisp.UnexpectedEof)
}

func (s *session) eval(text string) {
	s.input = text
	exprs, err := s.env.Runtime.Reader.Read(sourceName, strings.NewReader(text))
	if err != nil {
		s.renderError(err)
		return
	}
	for _, expr := range exprs {
		val, err := s.env.Eval(expr)
		if err != nil {
			s.renderError(err)
			return
		}
		fmt.Fprintln(s.out, lisp.Render(val, true)) //nolint:errcheck // best-effort REPL output
	}
}

func (s *session) renderError(err error) {
	_ = s.renderer.RenderError(s.out, err, "use (doc 'symbol) to show documentation")
}

// source serves the current input to the diagnostic renderer.
func (s *session) source(name string) ([]byte, error) {
	if name != sourceName {
		return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
	}
	return []byte(s.input), nil
}

// lineReader implements lisp.LineReader with a readline instance.
type lineReader struct {
	rl *readline.Instance
}

func (lr *lineReader) ReadLine(prompt string) (string, error) {
	lr.rl.SetPrompt(prompt)
	line, err := lr.rl.ReadLine()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mal_history")
}

// ensureHistoryFilePermissions creates the history file if necessary and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //nolint:gosec // user-configured history file
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
