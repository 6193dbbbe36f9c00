// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/mal/maltest"
)

func TestCoreFile(t *testing.T) {
	runner := &maltest.Runner{}
	runner.RunTestFile(t, "testdata/core.mal")
}

func BenchmarkParseCore(b *testing.B) {
	maltest.BenchmarkParse("testdata/core.mal", parserReader)(b)
}
