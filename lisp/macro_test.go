// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/mal/maltest"
)

func TestMacros(t *testing.T) {
	tests := maltest.TestSuite{
		{"defmacro!", maltest.TestSequence{
			{"(defmacro! one (fn* () 1))", "#<macro>", ""},
			{"(one)", "1", ""},
			{"(defmacro! two (fn* () 2))", "#<macro>", ""},
			{"(two)", "2", ""},
			{"(defmacro! unless (fn* (p a b) `(if ~p ~b ~a)))", "#<macro>", ""},
			{"(unless false 1 2)", "1", ""},
			{"(unless true 1 2)", "2", ""},
			{"(defmacro! unless2 (fn* (p a b) (list 'if (list 'not p) a b)))", "#<macro>", ""},
			{"(unless2 false 7 8)", "7", ""},
			{"(defmacro! bad 1)", "type-error: defmacro! value is not a function: number", ""},
		}},
		{"macro flag", maltest.TestSequence{
			{"(def! f (fn* (x) x))", "#<function>", ""},
			{"(defmacro! m f)", "#<macro>", ""},
			{"(fn? f)", "true", ""},
			{"(macro? f)", "false", ""},
			{"(fn? m)", "false", ""},
			{"(macro? m)", "true", ""},
			{"(f 1)", "1", ""},
		}},
		{"macroexpand", maltest.TestSequence{
			{"(defmacro! unless (fn* (p a b) `(if ~p ~b ~a)))", "#<macro>", ""},
			{"(macroexpand (unless PRED A B))", "(if PRED B A)", ""},
			{"(macroexpand (+ 1 2))", "(+ 1 2)", ""},
			{"(macroexpand 7)", "7", ""},
			{"(defmacro! identity (fn* (x) x))", "#<macro>", ""},
			{"(let* (a 123) (macroexpand (identity a)))", "a", ""},
			{"(let* (a 123) (identity a))", "123", ""},
			{"(defmacro! unless-twice (fn* (p a b) `(unless ~p ~a ~b)))", "#<macro>", ""},
			{"(macroexpand (unless-twice x 1 2))", "(if x 2 1)", ""},
		}},
		{"cond", maltest.TestSequence{
			{"(cond)", "nil", ""},
			{"(cond true 7)", "7", ""},
			{"(cond false 7)", "nil", ""},
			{"(cond false 7 true 8)", "8", ""},
			{"(cond false 7 false 8 \"else\" 9)", "9", ""},
			{"(cond false 7 (= 2 2) 8 \"else\" 9)", "8", ""},
			{"(cond true)", `exception: "odd number of forms to cond"`, ""},
			{"(let* (x (cond false \"no\" true \"yes\")) x)", `"yes"`, ""},
		}},
		{"prelude", maltest.TestSequence{
			{"(not false)", "true", ""},
			{"(not nil)", "true", ""},
			{"(not 1)", "false", ""},
			{"*host-language*", `"go"`, ""},
			{"*ARGV*", "()", ""},
		}},
	}
	maltest.RunTestSuite(t, tests)
}

func TestQuasiquote(t *testing.T) {
	tests := maltest.TestSuite{
		{"quasiquote", maltest.TestSequence{
			{"`7", "7", ""},
			{"`a", "a", ""},
			{"`(1 2 3)", "(1 2 3)", ""},
			{"`()", "()", ""},
			{"(def! a 8)", "8", ""},
			{"`(1 a 3)", "(1 a 3)", ""},
			{"`(1 ~a 3)", "(1 8 3)", ""},
			{"(def! lst '(b c))", "(b c)", ""},
			{"`(a lst d)", "(a lst d)", ""},
			{"`(a ~lst d)", "(a (b c) d)", ""},
			{"`(a ~@lst d)", "(a b c d)", ""},
			{"`(~@lst)", "(b c)", ""},
			{"(let* (x (list 2 3)) `(1 ~@x 4))", "(1 2 3 4)", ""},
			{"`[1 ~a ~@lst]", "[1 8 b c]", ""},
			{"`{:a ~a}", "{:a (unquote a)}", ""},
			{"`(nested (~a))", "(nested (8))", ""},
			{"`~a", "8", ""},
			{"`(unquote)", "nil", ""},
			{"(quasiquote (1 (unquote a)))", "(1 8)", ""},
		}},
		{"quasiquoteexpand", maltest.TestSequence{
			{"(quasiquoteexpand 7)", "7", ""},
			{"(quasiquoteexpand a)", "(quote a)", ""},
			{"(quasiquoteexpand (a ~b))", "(cons (quote a) (cons b ()))", ""},
			{"(quasiquoteexpand (a ~@b))", "(cons (quote a) (concat b ()))", ""},
			{"(quasiquoteexpand [a])", "(vec (cons (quote a) ()))", ""},
			{"(quasiquoteexpand {:k v})", "(quote {:k v})", ""},
		}},
	}
	maltest.RunTestSuite(t, tests)
}
