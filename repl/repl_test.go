package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runReplWithString(t *testing.T, input string, opts ...Option) string {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	errc := make(chan error, 1)
	go func() {
		opts = append([]Option{
			WithStdin(inR),
			WithStdout(outW),
			WithStderr(outW),
			WithHistoryFile(""),
			WithBanner(false),
		}, opts...)
		errc <- RunRepl(opts...)
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup
	require.NoError(t, <-errc)

	return output.String()
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".mal_history")

	// File does not exist yet.
	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "new history file should have mode 0600")
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".mal_history")

	// Create the file with overly permissive mode.
	err := os.WriteFile(histFile, []byte("some history"), 0644) //nolint:gosec // test fixture
	require.NoError(t, err)

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "existing history file should be restricted to 0600")

	// Verify contents are preserved.
	data, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "some history", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	// Should not panic or error with empty path.
	ensureHistoryFilePermissions("")
}

func TestRunRepl(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple Addition",
			input:    "(+ 1 1)\n",
			expected: []string{"2\n"},
		},
		{
			name:     "Readable Results",
			input:    "(list \"a\" :b)\n",
			expected: []string{"(\"a\" :b)\n"},
		},
		{
			name:     "Printing",
			input:    "(println \"hello\" 1)\n",
			expected: []string{"hello 1\n", "nil\n"},
		},
		{
			name:     "Continuation",
			input:    "(+ 1\n   2)\n",
			expected: []string{"3\n"},
		},
		{
			name:     "Definitions Persist",
			input:    "(def! x 41)\n(+ x 1)\n",
			expected: []string{"41\n", "42\n"},
		},
		{
			name:  "Error",
			input: "fnord\n(+ 2 2)\n",
			expected: []string{
				"error: symbol-not-found: 'fnord' not found",
				"--> <stdin>:1:1",
				"4\n",
			},
		},
		{
			name:     "Exception",
			input:    "(throw {:code 7})\n",
			expected: []string{"uncaught exception: {:code 7}"},
		},
		{
			name:     "Incomplete Input",
			input:    "(+ 1\n",
			expected: []string{"error: unexpected-eof: "},
		},
		{
			name:     "Readline Builtin",
			input:    "(readline \"? \")\nsome input\n",
			expected: []string{"\"some input\"\n"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := runReplWithString(t, tc.input)
			for _, expected := range tc.expected {
				assert.Contains(t, got, expected)
			}
		})
	}
}

func TestBanner(t *testing.T) {
	got := runReplWithString(t, "", WithBanner(true))
	assert.Contains(t, got, "Mal [go]\n")
}

func TestRunEnvErrors(t *testing.T) {
	root := lisp.NewEnv(nil)
	assert.Error(t, RunEnv(root), "environment without a reader")
	assert.Error(t, RunEnv(lisp.NewEnv(root)), "child environment")
}
