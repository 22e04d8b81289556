package capability

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// IsStructurallyCompatible reports whether a method of func type candidate can
// stand in for a method of func type required. Both types exclude receivers.
//
// Results other than a trailing error must be assignable pairwise. A trailing
// error result is the method's declared failure: the candidate may drop it but
// may not introduce one the required method lacks. Parameters are compared by
// position only; every required parameter must be assignable to the candidate
// parameter at the same position.
func IsStructurallyCompatible(candidate, required reflect.Type) bool {
	return Incompatibility(candidate, required) == ""
}

// Incompatibility explains why candidate cannot stand in for required. It
// returns the empty string when the two are compatible.
func Incompatibility(candidate, required reflect.Type) string {
	if candidate == nil || candidate.Kind() != reflect.Func {
		return fmt.Sprintf("candidate %v is not a function", candidate)
	}
	if required == nil || required.Kind() != reflect.Func {
		return fmt.Sprintf("required %v is not a function", required)
	}

	candVals, candFail := SplitResults(candidate)
	reqVals, reqFail := SplitResults(required)
	if len(candVals) != len(reqVals) {
		return fmt.Sprintf("returns %d values, want %d", len(candVals), len(reqVals))
	}
	for i := range candVals {
		if !candVals[i].AssignableTo(reqVals[i]) {
			return fmt.Sprintf("result %d: %v is not assignable to %v", i, candVals[i], reqVals[i])
		}
	}

	// Only the first required failure is consulted; Go methods declare at most one.
	if candFail != nil {
		if reqFail == nil {
			return fmt.Sprintf("declares failure %v the required method does not", candFail)
		}
		if !candFail.AssignableTo(reqFail) {
			return fmt.Sprintf("failure %v is not assignable to %v", candFail, reqFail)
		}
	}

	if candidate.NumIn() != required.NumIn() {
		return fmt.Sprintf("takes %d parameters, want %d", candidate.NumIn(), required.NumIn())
	}
	if candidate.IsVariadic() != required.IsVariadic() {
		return "variadic mismatch"
	}
	for i := range required.NumIn() {
		if !required.In(i).AssignableTo(candidate.In(i)) {
			return fmt.Sprintf("parameter %d: %v is not assignable to %v", i, required.In(i), candidate.In(i))
		}
	}
	return ""
}

// SplitResults separates the results of func type fn into value results and
// the trailing failure result, if the last result implements error.
func SplitResults(fn reflect.Type) (values []reflect.Type, failure reflect.Type) {
	n := fn.NumOut()
	values = make([]reflect.Type, 0, n)
	for i := range n {
		values = append(values, fn.Out(i))
	}
	if n > 0 && fn.Out(n-1).Implements(errorType) {
		failure = values[n-1]
		values = values[:n-1]
	}
	return values, failure
}

// MethodFunc returns the func type of m without its receiver. Methods taken
// from an interface type already exclude the receiver.
func MethodFunc(owner reflect.Type, m reflect.Method) reflect.Type {
	if owner.Kind() == reflect.Interface {
		return m.Type
	}
	in := make([]reflect.Type, 0, m.Type.NumIn()-1)
	for i := 1; i < m.Type.NumIn(); i++ {
		in = append(in, m.Type.In(i))
	}
	out := make([]reflect.Type, 0, m.Type.NumOut())
	for i := range m.Type.NumOut() {
		out = append(out, m.Type.Out(i))
	}
	return reflect.FuncOf(in, out, m.Type.IsVariadic())
}

// Base methods are the identity/representation methods every value can answer
// through formatting, even when no provider routes them.
var baseMethods = map[string]reflect.Type{
	"String":   reflect.TypeFor[func() string](),
	"GoString": reflect.TypeFor[func() string](),
}

// IsBase reports whether the method name and func type belong to the base set.
func IsBase(method string, fn reflect.Type) bool {
	t, ok := baseMethods[method]
	return ok && t == fn
}

// baseInterfaces declare the base methods. A String or GoString method on any
// other capability interface is an ordinary capability.
var baseInterfaces = map[reflect.Type]struct{}{
	reflect.TypeFor[fmt.Stringer]():   {},
	reflect.TypeFor[fmt.GoStringer](): {},
}

// IsBaseSignature reports whether sig is a base method declared by
// fmt.Stringer or fmt.GoStringer.
func IsBaseSignature(sig Signature) bool {
	if _, ok := baseInterfaces[sig.Interface]; !ok {
		return false
	}
	return IsBase(sig.Method, sig.Func)
}
