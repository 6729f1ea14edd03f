package synapse

import (
	"fmt"
	"reflect"
)

// Provider supplies the result of one injected service method
type Provider interface {
	// Execute calls the underlying method. Zero results yield nil, a
	// single result is returned as is and several are returned as Results.
	Execute(args ...any) any

	GetToken() string
}

// Results holds the values of a provider call with several results.
// Respond spreads it back into individual values.
type Results []any

// DeriveProviderID names the provider for method fn of service manager,
// e.g. DeriveProviderID("Find", "UserRepository") is "Find_UserRepository".
// The generator and Container.RegisterMethods both rely on it.
func DeriveProviderID(fn, manager string) string {
	return fn + "_" + manager
}

// ProviderFunc adapts a plain function to Provider
type ProviderFunc struct {
	token string
	fn    func(args ...any) any
}

// NewProviderFunc creates a provider named token backed by fn
func NewProviderFunc(token string, fn func(args ...any) any) *ProviderFunc {
	return &ProviderFunc{token: token, fn: fn}
}

func (p *ProviderFunc) Execute(args ...any) any {
	return p.fn(args...)
}

func (p *ProviderFunc) GetToken() string {
	return p.token
}

// MethodProvider calls a method value through reflection
type MethodProvider struct {
	token  string
	method reflect.Value
}

// NewMethodProvider wraps fn, which must be a function value such as a
// bound method expression repo.Find.
func NewMethodProvider(token string, fn any) (*MethodProvider, error) {
	value := reflect.ValueOf(fn)
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("provider %s: expected a function, got %T", token, fn)
	}
	return &MethodProvider{token: token, method: value}, nil
}

func (p *MethodProvider) GetToken() string {
	return p.token
}

// Execute converts args to the method's parameter types and calls it.
// Argument mismatches panic the same way a direct call would fail to compile.
func (p *MethodProvider) Execute(args ...any) any {
	fnType := p.method.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = argumentValue(arg, paramType(fnType, i), p.token)
	}

	var out []reflect.Value
	if fnType.IsVariadic() && len(args) == fnType.NumIn() && isSliceFor(args[len(args)-1], fnType.In(fnType.NumIn()-1)) {
		out = p.method.CallSlice(in)
	} else {
		out = p.method.Call(in)
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0].Interface()
	default:
		results := make(Results, len(out))
		for i, v := range out {
			results[i] = v.Interface()
		}
		return results
	}
}

func paramType(fnType reflect.Type, i int) reflect.Type {
	if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}
	if i >= fnType.NumIn() {
		panic(fmt.Sprintf("too many arguments: got %d, want %d", i+1, fnType.NumIn()))
	}
	return fnType.In(i)
}

func isSliceFor(arg any, sliceType reflect.Type) bool {
	return arg != nil && reflect.TypeOf(arg) == sliceType
}

func argumentValue(arg any, want reflect.Type, token string) reflect.Value {
	if arg == nil {
		return reflect.Zero(want)
	}
	value := reflect.ValueOf(arg)
	if value.Type().AssignableTo(want) {
		return value
	}
	// variadic tail passed as a whole slice
	if want.Kind() != reflect.Slice && value.Kind() == reflect.Slice && value.Type().Elem() == want {
		return value
	}
	if value.Type().ConvertibleTo(want) {
		return value.Convert(want)
	}
	panic(fmt.Sprintf("provider %s: cannot use %s as %s", token, value.Type(), want))
}

// As converts a provider result back to its static type. Generated code
// uses it when the result type of an injected method is known.
func As[T any](value any) T {
	if value == nil {
		var zero T
		return zero
	}
	return value.(T)
}

// Unpack2 splits a two-result provider call, e.g.
//
//	user, err := synapse.Unpack2[*User, error](c.repoFind.Execute(id))
func Unpack2[A, B any](value any) (A, B) {
	results := value.(Results)
	return As[A](results[0]), As[B](results[1])
}

// Unpack3 splits a three-result provider call
func Unpack3[A, B, C any](value any) (A, B, C) {
	results := value.(Results)
	return As[A](results[0]), As[B](results[1]), As[C](results[2])
}
