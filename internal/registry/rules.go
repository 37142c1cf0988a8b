package registry

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"aquacore/pkg/domain"
)

var (
	celEnvOnce sync.Once
	celEnv     *cel.Env
	celEnvErr  error

	// programCache memoizes compiled rule programs keyed by expression text.
	// Catalog rules repeat across parameters, and the registry is rebuilt in
	// tests far more often than rules change.
	programCache sync.Map
)

func ruleEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(cel.Variable("value", cel.DynType))
	})
	return celEnv, celEnvErr
}

// CompileRule compiles a CEL validation expression over a `value` variable.
// The expression must produce a boolean.
func CompileRule(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("expression required")
	}
	if cached, ok := programCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := ruleEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.New("validation rule must evaluate to bool")
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	programCache.Store(expr, program)
	return program, nil
}

// rulePredicate wraps a compiled rule as a pure predicate. Evaluation errors
// (type mismatches, failed conversions) count as validation failures rather
// than surfacing to callers.
func rulePredicate(expr string) (domain.ValidateFunc, error) {
	program, err := CompileRule(expr)
	if err != nil {
		return nil, err
	}
	return func(value any) bool {
		out, _, err := program.Eval(map[string]any{"value": value})
		if err != nil {
			return false
		}
		ok, isBool := out.Value().(bool)
		return isBool && ok
	}, nil
}
