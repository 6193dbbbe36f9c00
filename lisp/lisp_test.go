package lisp_test

import (
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinValue(t *testing.T) {
	var count lisp.LBuiltin = func(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
		return lisp.Int(len(args)), nil
	}
	fun := lisp.Builtin("count-args", count, "Returns the number of arguments.")
	assert.Equal(t, lisp.LNative, fun.Type)
	assert.Equal(t, "builtin", fun.Type.String())
	require.NotNil(t, fun.FunData())
	assert.Equal(t, "count-args", fun.FunData().Name)
	assert.NotEqual(t, lisp.LFun, fun.Type)

	env := lisp.NewEnv(nil)
	env.Put("count-args", fun)
	v, err := env.Eval(lisp.List(lisp.Symbol("count-args"), lisp.Int(1), lisp.Int(2)))
	require.NoError(t, err)
	assert.Equal(t, 2, v.Int)

	closure := lisp.Lambda(env, nil, lisp.Nil())
	assert.Equal(t, lisp.LFun, closure.Type)
	assert.Equal(t, "function", closure.Type.String())
}
