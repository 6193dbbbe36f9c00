// Copyright © 2018 The ELPS authors

package lisp

import (
	"strconv"
	"strings"
)

// Render returns the textual representation of v.  When readable is true
// strings are quoted and escaped so that the reader can parse the result.
// Otherwise strings are written verbatim.  Functions render as placeholders
// which can not be read.
func Render(v *LVal, readable bool) string {
	var b strings.Builder
	render(&b, v, readable)
	return b.String()
}

// RenderSeq renders each of vs and joins the results with sep.
func RenderSeq(vs []*LVal, readable bool, sep string) string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteString(sep)
		}
		render(&b, v, readable)
	}
	return b.String()
}

func render(b *strings.Builder, v *LVal, readable bool) {
	switch v.Type {
	case LNil:
		b.WriteString(NilSymbol)
	case LBool:
		if v.Int != 0 {
			b.WriteString(TrueSymbol)
		} else {
			b.WriteString(FalseSymbol)
		}
	case LInt:
		b.WriteString(strconv.Itoa(v.Int))
	case LString:
		if readable {
			b.WriteString(QuoteString(v.Str))
		} else {
			b.WriteString(v.Str)
		}
	case LSymbol:
		b.WriteString(v.Str)
	case LKeyword:
		b.WriteString(":")
		b.WriteString(v.Str)
	case LList:
		renderCells(b, "(", v.Cells, ")", readable)
	case LVector:
		renderCells(b, "[", v.Cells, "]", readable)
	case LHashMap:
		b.WriteString("{")
		for i, k := range SortedMapKeys(v) {
			if i > 0 {
				b.WriteString(" ")
			}
			render(b, MapKeyValue(k), readable)
			b.WriteString(" ")
			render(b, v.Map[k], readable)
		}
		b.WriteString("}")
	case LNative:
		b.WriteString("#<builtin ")
		b.WriteString(v.FunData().Name)
		b.WriteString(">")
	case LFun:
		if v.IsMacro() {
			b.WriteString("#<macro>")
		} else {
			b.WriteString("#<function>")
		}
	case LAtom:
		b.WriteString("(atom ")
		render(b, v.Cells[0], readable)
		b.WriteString(")")
	default:
		b.WriteString("#<invalid>")
	}
}

func renderCells(b *strings.Builder, left string, cells []*LVal, right string, readable bool) {
	b.WriteString(left)
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" ")
		}
		render(b, c, readable)
	}
	b.WriteString(right)
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// QuoteString returns s as a string literal the reader can parse.
func QuoteString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}
