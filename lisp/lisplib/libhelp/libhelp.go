// Copyright © 2021 The ELPS authors

package libhelp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib/internal/libutil"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// MissingDoc describes a symbol with no documentation.
type MissingDoc struct {
	// Kind is the type of the symbol: "special-op", "builtin", "function",
	// "macro".
	Kind string

	// Name is the symbol name.
	Name string
}

// CheckMissing reports special operators and functions bound in the root of
// env which have no documentation.  Values that are not functions are not
// reported.
func CheckMissing(env *lisp.LEnv) []MissingDoc {
	var missing []MissingDoc
	for _, op := range lisp.SpecialOps() {
		if strings.TrimSpace(SpecialOpDocs[op]) == "" {
			missing = append(missing, MissingDoc{Kind: "special-op", Name: op})
		}
	}
	root := env.Root()
	for _, sym := range root.Symbols() {
		v, _ := root.Get(sym)
		if v.Type != lisp.LNative && v.Type != lisp.LFun {
			continue
		}
		if strings.TrimSpace(v.Docstring()) == "" {
			missing = append(missing, MissingDoc{Kind: funKind(v), Name: sym})
		}
	}
	return missing
}

// LoadPackage adds the doc builtin to env
func LoadPackage(env *lisp.LEnv) error {
	libutil.AddBuiltins(env, builtins)
	return nil
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("doc", libutil.Formals("x"), builtinDoc,
		`
		Prints documentation for x.  When x is a symbol the value it is
		bound to is documented (special operators are documented too).
		Functions have their signature and any docstring rendered.  Other
		values have their types and current values printed.  Closures are
		documented through a :doc metadata entry.
		`),
}

// SpecialOpDocs documents the special operators, which are not bound to
// values in any environment.
var SpecialOpDocs = map[string]string{
	lisp.DefSymbol: `
		(def! sym expr)
		Evaluates expr and binds the result to sym in the current
		environment.  Returns the value.`,
	lisp.DefMacroSymbol: `
		(defmacro! sym expr)
		Evaluates expr, which must produce a function, and binds a macro
		with the same parameters and body to sym.`,
	lisp.LetSymbol: `
		(let* (sym1 expr1 sym2 expr2 ...) body)
		Evaluates body in a new environment where each sym is bound in
		order to its expr.  Later bindings may refer to earlier ones.`,
	lisp.DoSymbol: `
		(do expr ...)
		Evaluates each expr in order and returns the value of the last.`,
	lisp.IfSymbol: `
		(if cond then else)
		Evaluates then when cond is neither nil nor false, otherwise else.
		A missing else produces nil.`,
	lisp.FnSymbol: `
		(fn* (params ...) body)
		Returns a closure over the current environment.  The parameter &
		binds the parameter following it to a list of remaining arguments.`,
	lisp.QuoteSymbol: `
		(quote form)
		Returns form without evaluating it.`,
	lisp.QuasiquoteSymbol: `
		(quasiquote form)
		Returns form as a template.  Forms inside unquote are evaluated and
		lists inside splice-unquote are spliced into the result.`,
	lisp.QuasiquoteExpandSymbol: `
		(quasiquoteexpand form)
		Returns the expression quasiquote would evaluate for form.`,
	lisp.MacroExpandSymbol: `
		(macroexpand form)
		Expands form while it is a call to a macro and returns the result
		without evaluating it.`,
	lisp.TrySymbol: `
		(try* expr (catch* sym handler))
		Evaluates expr.  If an error is raised the handler is evaluated
		with sym bound to the thrown value, or to the error message for
		errors raised by the interpreter.`,
	lisp.CatchSymbol: `
		(catch* sym handler)
		The handler clause of try*.`,
}

func builtinDoc(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	var err error
	if x.Type == lisp.LSymbol {
		err = RenderVar(env.Runtime.Stderr, env, x.Str)
	} else {
		err = RenderValue(env.Runtime.Stderr, x)
	}
	if err != nil {
		return nil, err
	}
	return lisp.Nil(), nil
}

// RenderAll writes a summary of every special operator and every symbol bound
// in the root of env to w.  Each symbol is listed with the first line of its
// documentation (if any).
func RenderAll(w io.Writer, env *lisp.LEnv) error {
	root := env.Root()
	names := append(lisp.SpecialOps(), root.Symbols()...)
	sort.Strings(names)
	for _, name := range names {
		var doc string
		if d, ok := SpecialOpDocs[name]; ok {
			doc = d
		} else {
			v, _ := root.Get(name)
			doc = v.Docstring()
		}
		line := fmt.Sprintf("  %-16s", name)
		if first := firstLine(doc); first != "" {
			line += "  " + first
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func firstLine(doc string) string {
	for _, line := range strings.Split(dedentDoc(doc), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "(") {
			return line
		}
	}
	return ""
}

// RenderVar writes to w formatted documentation for the object referenced by
// sym in the context of env.  The exact formatting of the rendered
// documentation is subject to change across versions.
func RenderVar(w io.Writer, env *lisp.LEnv, sym string) error {
	if doc, ok := SpecialOpDocs[sym]; ok {
		_, err := fmt.Fprintf(w, "special-op %s\n%s\n", sym, cleanDocstring(doc))
		return err
	}
	v, err := env.Lookup(sym)
	if err != nil {
		return err
	}
	if v.Type == lisp.LNative || v.Type == lisp.LFun {
		return renderFun(w, sym, v)
	}
	return renderVal(w, sym, v)
}

// RenderValue writes to w formatted documentation for v.  Functions are
// rendered using the name they were defined with.
func RenderValue(w io.Writer, v *lisp.LVal) error {
	if fd := v.FunData(); fd != nil {
		name := fd.Name
		if name == "" {
			name = "<anonymous>"
		}
		return renderFun(w, name, v)
	}
	return renderVal(w, "", v)
}

func renderVal(w io.Writer, sym string, v *lisp.LVal) error {
	var err error
	if sym == "" {
		_, err = fmt.Fprintf(w, "%v %v\n", v.Type, v)
	} else {
		_, err = fmt.Fprintf(w, "%v %s %v\n", v.Type, sym, v)
	}
	if err != nil {
		return err
	}
	if doc := cleanDocstring(v.Docstring()); doc != "" {
		_, err = fmt.Fprintln(w, doc)
	}
	return err
}

func renderFun(w io.Writer, sym string, v *lisp.LVal) error {
	_, err := fmt.Fprintf(w, "%s %s\n", funKind(v), libutil.Signature(sym, v.FunData().Formals))
	if err != nil {
		return fmt.Errorf("rendering signature: %w", err)
	}
	doc := cleanDocstring(v.Docstring())
	if doc != "" {
		_, err = fmt.Fprintln(w, doc)
		return err
	}
	return nil
}

func funKind(v *lisp.LVal) string {
	if v.IsMacro() {
		return "macro"
	}
	return v.Type.String()
}

func cleanDocstring(doc string) string {
	if doc == "" {
		return ""
	}
	if doc[0] == '\n' {
		doc = doc[1:]
	}
	doc = indent.String(wordwrap.String(dedentDoc(doc), 72), 2)
	doc = strings.TrimSuffix(doc, "\n")
	return doc
}

// dedentDoc removes common leading whitespace from all non-empty lines.  The
// first line of a raw string literal often has no indentation while the
// following lines inherit the tab indentation of the source, so the first
// line does not contribute to the common indentation.
func dedentDoc(s string) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	lines := strings.Split(s, "\n")

	minWS := -1
	start := 0
	if len(lines) > 1 {
		start = 1
	}
	for _, line := range lines[start:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		ws := len(line) - len(trimmed)
		if minWS < 0 || ws < minWS {
			minWS = ws
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	if minWS <= 0 {
		return strings.Join(lines, "\n")
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
		} else if len(lines[i]) >= minWS {
			lines[i] = lines[i][minWS:]
		}
	}
	return strings.Join(lines, "\n")
}
