// Copyright © 2018 The ELPS authors

// Package libio provides builtins for printing, reading and evaluating
// forms, reading files and reading lines of user input.
package libio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib/internal/libutil"
	"github.com/luthersystems/mal/parser"
)

// LoadPackage adds the io builtins to env
func LoadPackage(env *lisp.LEnv) error {
	libutil.AddBuiltins(env, builtins)
	return nil
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("pr-str", libutil.Formals("&", "xs"), builtinPrStr,
		`Returns the readable representations of xs separated by spaces.`),
	libutil.FunctionDoc("str", libutil.Formals("&", "xs"), builtinStr,
		`Returns the concatenated display representations of xs.  Strings
		are included without quotes.`),
	libutil.FunctionDoc("prn", libutil.Formals("&", "xs"), builtinPrn,
		`Prints the readable representations of xs separated by spaces and
		followed by a newline.  Returns nil.`),
	libutil.FunctionDoc("println", libutil.Formals("&", "xs"), builtinPrintln,
		`Prints the display representations of xs separated by spaces and
		followed by a newline.  Returns nil.`),
	libutil.FunctionDoc("read-string", libutil.Formals("text"), builtinReadString,
		`Parses the first form in string text and returns it unevaluated.
		Returns nil when text contains no forms.`),
	libutil.FunctionDoc("slurp", libutil.Formals("filename"), builtinSlurp,
		`Returns the contents of the named file as a string.`),
	libutil.FunctionDoc("readline", libutil.Formals("prompt"), builtinReadline,
		`Displays prompt and returns the next line of user input, or nil at
		the end of input.`),
	libutil.FunctionDoc("time-ms", libutil.Formals(), builtinTimeMS,
		`Returns the current time in milliseconds since the unix epoch.`),
	libutil.FunctionDoc("eval", libutil.Formals("form"), builtinEval,
		`Evaluates form in the root environment.`),
}

func builtinPrStr(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.String(lisp.RenderSeq(args, true, " ")), nil
}

func builtinStr(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.String(lisp.RenderSeq(args, false, "")), nil
}

func builtinPrn(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return printLine(env, lisp.RenderSeq(args, true, " "))
}

func builtinPrintln(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return printLine(env, lisp.RenderSeq(args, false, " "))
}

func printLine(env *lisp.LEnv, line string) (*lisp.LVal, error) {
	_, err := fmt.Fprintln(env.Runtime.Stdout, line)
	if err != nil {
		return nil, err
	}
	return lisp.Nil(), nil
}

func stringArg(name string, v *lisp.LVal) (string, error) {
	if v.Type != lisp.LString {
		return "", lisp.Errorf(lisp.TypeError, "%s: argument is not a string: %v", name, v.Type)
	}
	return v.Str, nil
}

func builtinReadString(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	text, err := stringArg("read-string", args[0])
	if err != nil {
		return nil, err
	}
	v, err := parser.ParseString(text)
	if errors.Is(err, io.EOF) {
		return lisp.Nil(), nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func builtinSlurp(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	filename, err := stringArg("slurp", args[0])
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("slurp: %w", err)
	}
	return lisp.String(string(b)), nil
}

func builtinReadline(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	prompt, err := stringArg("readline", args[0])
	if err != nil {
		return nil, err
	}
	lr := env.Runtime.LineReader
	if lr == nil {
		return lisp.Nil(), nil
	}
	line, err := lr.ReadLine(prompt)
	if errors.Is(err, io.EOF) {
		return lisp.Nil(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("readline: %w", err)
	}
	return lisp.String(line), nil
}

func builtinTimeMS(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Int(int(time.Now().UnixMilli())), nil
}

func builtinEval(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return env.Root().Eval(args[0])
}
