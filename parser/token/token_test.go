// Copyright © 2018 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
	assert.Equal(t, "invalid", numTokenTypes.String())
}

func TestTypeIsClose(t *testing.T) {
	assert.True(t, PAREN_R.IsClose())
	assert.True(t, BRACE_R.IsClose())
	assert.True(t, CURLY_R.IsClose())
	assert.False(t, PAREN_L.IsClose())
	assert.False(t, ATOM.IsClose())
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "f", (&Location{File: "f", Pos: -1}).String())
	assert.Equal(t, "f[3]", (&Location{File: "f", Pos: 3}).String())
	assert.Equal(t, "f:2", (&Location{File: "f", Line: 2}).String())
	assert.Equal(t, "f:2:7", (&Location{File: "f", Line: 2, Col: 7}).String())
	assert.Equal(t, "EOF", (&Token{Type: EOF}).String())
	assert.Equal(t, "abc", (&Token{Type: ATOM, Text: "abc"}).String())
}
