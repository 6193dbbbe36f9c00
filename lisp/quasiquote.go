// Copyright © 2018 The ELPS authors

package lisp

// Quasiquote rewrites a quasiquoted template into an expression that builds
// the template when evaluated.  Quasiquote does not evaluate anything.
//
//	(unquote x)          => x
//	(a (splice-unquote b)) => (cons (quote a) (concat b ()))
//	[a b]                => (vec (cons (quote a) (cons (quote b) ())))
//	sym, {...}           => (quote sym), (quote {...})
func Quasiquote(ast *LVal) *LVal {
	switch ast.Type {
	case LList:
		if len(ast.Cells) > 0 && ast.Cells[0].IsSymbol(UnquoteSymbol) {
			if len(ast.Cells) < 2 {
				return Nil()
			}
			return ast.Cells[1]
		}
		return quasiquoteSeq(ast.Cells)
	case LVector:
		return List(Symbol("vec"), quasiquoteSeq(ast.Cells))
	case LSymbol, LHashMap:
		return List(Symbol(QuoteSymbol), ast)
	default:
		return ast
	}
}

// quasiquoteSeq folds cells from right to left into nested cons and concat
// calls.
func quasiquoteSeq(cells []*LVal) *LVal {
	acc := List()
	for i := len(cells) - 1; i >= 0; i-- {
		elt := cells[i]
		if elt.Type == LList && len(elt.Cells) > 1 && elt.Cells[0].IsSymbol(SpliceUnquoteSymbol) {
			acc = List(Symbol("concat"), elt.Cells[1], acc)
			continue
		}
		acc = List(Symbol("cons"), Quasiquote(elt), acc)
	}
	return acc
}
