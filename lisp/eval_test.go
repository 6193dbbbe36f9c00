// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/mal/maltest"
)

func TestEval(t *testing.T) {
	tests := maltest.TestSuite{
		{"self evaluating", maltest.TestSequence{
			{"1", "1", ""},
			{`"abc"`, `"abc"`, ""},
			{":kw", ":kw", ""},
			{"nil", "nil", ""},
			{"true", "true", ""},
			{"()", "()", ""},
			{"[1 (+ 1 1) [3]]", "[1 2 [3]]", ""},
			{`{:a (+ 1 1) "b" [(* 2 2)]}`, `{"b" [4] :a 2}`, ""},
			{"undefined-symbol", "symbol-not-found: 'undefined-symbol' not found", ""},
			{"(1 2)", "type-error: 1 is not a function", ""},
		}},
		{"def!", maltest.TestSequence{
			{"(def! x 3)", "3", ""},
			{"x", "3", ""},
			{"(def! x (+ x 1))", "4", ""},
			{"x", "4", ""},
			{"(def! y)", "type-error: def! requires a symbol and a value", ""},
			{`(def! "y" 1)`, "type-error: def! key is not a symbol: string", ""},
			{"(def! z (undefined))", "symbol-not-found: 'undefined' not found", ""},
			{"z", "symbol-not-found: 'z' not found", ""},
		}},
		{"let*", maltest.TestSequence{
			{"(def! x 10)", "10", ""},
			{"(let* (x 1 y (+ x 1)) (list x y))", "(1 2)", ""},
			{"(let* [x 2] x)", "2", ""},
			{"x", "10", ""},
			{"(let* (x 1 z x) (let* (x 2) (list x z)))", "(2 1)", ""},
			{"(let* () 5)", "5", ""},
			{"(let* (x) x)", "type-error: let* bindings have an odd number of forms", ""},
			{"(let* (1 2) 3)", "type-error: let* binding is not a symbol: number", ""},
			{"(let* x 3)", "type-error: let* bindings are not a sequence: symbol", ""},
		}},
		{"do", maltest.TestSequence{
			{"(do)", "nil", ""},
			{"(do 1 2 3)", "3", ""},
			{`(do (prn "a") (prn "b") 7)`, "7", "\"a\"\n\"b\"\n"},
			{"(do (def! a 1) (def! b 2) (+ a b))", "3", ""},
		}},
		{"if", maltest.TestSequence{
			{"(if true 1 2)", "1", ""},
			{"(if false 1 2)", "2", ""},
			{"(if nil 1 2)", "2", ""},
			{"(if 0 1 2)", "1", ""},
			{`(if "" 1 2)`, "1", ""},
			{"(if () 1 2)", "1", ""},
			{"(if false 1)", "nil", ""},
			{"(if true)", "type-error: if requires a condition and a then-branch", ""},
		}},
		{"fn*", maltest.TestSequence{
			{"((fn* (a b) (+ a b)) 2 3)", "5", ""},
			{"((fn* [a b] (+ a b)) 2 3)", "5", ""},
			{"((fn* () 4))", "4", ""},
			{"((fn* ()))", "nil", ""},
			{"((fn* (a b) b) 1)", "nil", ""},
			{"((fn* (a) a) 1 2 3)", "1", ""},
			{"((fn* (& more) more) 1 2 3)", "(1 2 3)", ""},
			{"((fn* (a & more) more) 1)", "()", ""},
			{"((fn* (& more) (count more)))", "0", ""},
			{"(fn* (a) a)", "#<function>", ""},
			{"(fn* (1) a)", "type-error: fn* parameter is not a symbol: number", ""},
			{"((fn* (a &) a) 1)", "type-error: & must be followed by a symbol", ""},
		}},
		{"closures", maltest.TestSequence{
			{"(def! adder (fn* (n) (fn* (x) (+ x n))))", "#<function>", ""},
			{"(def! add5 (adder 5))", "#<function>", ""},
			{"(add5 3)", "8", ""},
			{"((adder 10) 3)", "13", ""},
			{"(def! counter (let* (n (atom 0)) (fn* () (swap! n + 1))))", "#<function>", ""},
			{"(counter)", "1", ""},
			{"(counter)", "2", ""},
			{"(def! f (let* (x 1) (fn* () x)))", "#<function>", ""},
			{"(def! x 2)", "2", ""},
			{"(f)", "1", ""},
		}},
		{"recursion", maltest.TestSequence{
			{"(def! fib (fn* (n) (if (< n 2) n (+ (fib (- n 1)) (fib (- n 2))))))", "#<function>", ""},
			{"(fib 10)", "55", ""},
			{"(def! sum2 (fn* (n acc) (if (= n 0) acc (sum2 (- n 1) (+ n acc)))))", "#<function>", ""},
			{"(sum2 10 0)", "55", ""},
			{"(def! foo (fn* (n) (if (= n 0) 0 (bar (- n 1)))))", "#<function>", ""},
			{"(def! bar (fn* (n) (if (= n 0) 0 (foo (- n 1)))))", "#<function>", ""},
			{"(foo 10000)", "0", ""},
		}},
		{"tail calls", maltest.TestSequence{
			{`(def! loop (fn* (n) (if (= n 0) "done" (loop (- n 1)))))`, "#<function>", ""},
			{"(loop 100000)", `"done"`, ""},
			{`(def! loop-do (fn* (n) (do (if (= n 0) "done" (loop-do (- n 1))))))`, "#<function>", ""},
			{"(loop-do 100000)", `"done"`, ""},
			{`(def! loop-let (fn* (n) (let* (m (- n 1)) (if (< m 0) "done" (loop-let m)))))`, "#<function>", ""},
			{"(loop-let 100000)", `"done"`, ""},
			{`(def! loop-try (fn* (n) (try* (throw n) (catch* e (if (= e 0) "done" (loop-try (- e 1)))))))`, "#<function>", ""},
			{"(loop-try 1000)", `"done"`, ""},
		}},
		{"quote", maltest.TestSequence{
			{"(quote a)", "a", ""},
			{"'a", "a", ""},
			{"'(1 (+ 1 1))", "(1 (+ 1 1))", ""},
			{"''a", "(quote a)", ""},
			{"(quote)", "type-error: quote requires an argument", ""},
		}},
		{"eval", maltest.TestSequence{
			{"(eval '(+ 1 2))", "3", ""},
			{"(eval (list + 1 2))", "3", ""},
			{`(eval (read-string "(* 2 3)"))`, "6", ""},
			{"(let* (x 5) (eval '(def! evaled x)))", "symbol-not-found: 'x' not found", ""},
			{"(let* (y 5) (eval (list 'def! 'evaled y)))", "5", ""},
			{"evaled", "5", ""},
		}},
	}
	maltest.RunTestSuite(t, tests)
}
