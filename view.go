package aspects

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// View presents an object as a single target interface after checking once
// that every target method has a structurally compatible implementation.
//
// A view over a composite resolves each method to a capability signature and
// dispatches through the composite's routing table on every call, so later
// Add and Remove calls are visible through the view. A view never modifies
// the object it wraps.
//
// Typed adapters registered with RegisterView embed *View and forward each
// method through Call.
type View struct {
	target  reflect.Type
	origin  any
	methods map[string]*viewMethod
}

type viewMethod struct {
	fn        reflect.Type
	candidate reflect.Type
	call      func(in []reflect.Value) ([]reflect.Value, error)
}

// viewer is satisfied by *View and by every adapter embedding it.
type viewer interface {
	aspectsView() *View
}

func (v *View) aspectsView() *View {
	return v
}

// As returns instance as interface T.
//
// If instance already implements T it is returned unchanged. Otherwise the
// structural check runs and the adapter registered for T wraps the resulting
// view. The check fails with an *IncompatibleViewError; a missing adapter
// fails with ErrNoViewAdapter.
func As[T any](instance any) (T, error) {
	var zero T
	if t, ok := instance.(T); ok {
		return t, nil
	}
	target := reflect.TypeFor[T]()
	v, err := AsType(instance, target)
	if err != nil {
		return zero, err
	}
	ctor, ok := views.Get(target)
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrNoViewAdapter, target)
	}
	t, ok := ctor(v).(T)
	if !ok {
		return zero, fmt.Errorf("%w: adapter for %v returned %T", ErrNoViewAdapter, target, ctor(v))
	}
	return t, nil
}

// MustAs is like As but panics on error.
func MustAs[T any](instance any) T {
	t, err := As[T](instance)
	if err != nil {
		panic(err)
	}
	return t
}

// AsType builds an untyped view of instance as the target interface.
func AsType(instance any, target reflect.Type) (*View, error) {
	if target == nil || target.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: target %v is not an interface", ErrIncompatibleView, target)
	}
	if instance == nil {
		return nil, &IncompatibleViewError{Target: target, Reason: "nil instance"}
	}

	v := &View{
		target:  target,
		origin:  instance,
		methods: make(map[string]*viewMethod, target.NumMethod()),
	}
	comp, _ := compositeOf(instance)
	for i := range target.NumMethod() {
		m := target.Method(i)
		var (
			vm     *viewMethod
			reason string
		)
		if comp != nil {
			vm, reason = resolveOnComposite(comp, target, m)
		} else {
			vm, reason = resolveOnValue(instance, m)
		}
		if vm == nil {
			return nil, &IncompatibleViewError{
				Type:   reflect.TypeOf(instance),
				Target: target,
				Method: m.Name,
				Reason: reason,
			}
		}
		v.methods[m.Name] = vm
	}
	return v, nil
}

// resolveOnComposite matches a target method against the methods of the
// composite's declared interfaces, taking the first compatible one by
// interface name.
func resolveOnComposite(comp *Composite, target reflect.Type, m reflect.Method) (*viewMethod, string) {
	reason := "is not implemented"
	for _, iface := range comp.Declared() {
		im, ok := iface.MethodByName(m.Name)
		if !ok {
			continue
		}
		if why := capability.Incompatibility(im.Type, m.Type); why != "" {
			reason = why
			continue
		}
		sig := capability.Signature{Interface: iface, Method: im.Name, Func: im.Type}
		return &viewMethod{
			fn:        m.Type,
			candidate: im.Type,
			call: func(in []reflect.Value) ([]reflect.Value, error) {
				return comp.invoke(sig, in)
			},
		}, ""
	}
	if capability.IsBase(m.Name, m.Type) {
		sig := capability.Signature{Interface: target, Method: m.Name, Func: m.Type}
		return &viewMethod{
			fn:        m.Type,
			candidate: m.Type,
			call: func([]reflect.Value) ([]reflect.Value, error) {
				return comp.base(sig), nil
			},
		}, ""
	}
	return nil, reason
}

// resolveOnValue matches a target method against the concrete method set of
// instance.
func resolveOnValue(instance any, m reflect.Method) (*viewMethod, string) {
	rv := reflect.ValueOf(instance)
	rt := rv.Type()
	cm, ok := rt.MethodByName(m.Name)
	if !ok {
		if capability.IsBase(m.Name, m.Type) {
			return &viewMethod{
				fn:        m.Type,
				candidate: m.Type,
				call: func([]reflect.Value) ([]reflect.Value, error) {
					return formatBase(rv, m.Name), nil
				},
			}, ""
		}
		return nil, "is not implemented"
	}
	candidate := capability.MethodFunc(rt, cm)
	if why := capability.Incompatibility(candidate, m.Type); why != "" {
		return nil, why
	}
	fn := rv.Method(cm.Index)
	return &viewMethod{
		fn:        m.Type,
		candidate: candidate,
		call: func(in []reflect.Value) ([]reflect.Value, error) {
			return fn.Call(in), nil
		},
	}, ""
}

// Target returns the interface the view presents.
func (v *View) Target() reflect.Type {
	return v.target
}

// Origin returns the object the view wraps directly, which may itself be a view.
func (v *View) Origin() any {
	return v.origin
}

// Unwrap follows the chain of views to the first object that is not a view.
func (v *View) Unwrap() any {
	var cur any = v
	for {
		vw, ok := cur.(viewer)
		if !ok {
			return cur
		}
		cur = vw.aspectsView().origin
	}
}

// Methods returns the target method names, sorted.
func (v *View) Methods() []string {
	names := make([]string, 0, len(v.methods))
	for name := range v.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls a target method and returns its results converted to the
// target's result types.
func (v *View) Invoke(method string, args ...any) ([]any, error) {
	vm, ok := v.methods[method]
	if !ok {
		return nil, &UnsupportedCapabilityError{Signature: capability.Signature{Interface: v.target, Method: method}}
	}
	in, err := argValues(vm.fn, args)
	if err != nil {
		return nil, fmt.Errorf("%v.%s: %w", v.target, method, err)
	}
	out, err := vm.call(in)
	if err != nil {
		return nil, err
	}
	return interfaces(shapeResults(out, vm.candidate, vm.fn)), nil
}

// Call is Invoke for adapters whose methods have no error slot: a dispatch
// failure panics with the error, typically an *UnsupportedCapabilityError.
func (v *View) Call(method string, args ...any) []any {
	out, err := v.Invoke(method, args...)
	if err != nil {
		panic(err)
	}
	return out
}

// shapeResults converts candidate results to the target's result types. A
// target failure slot the candidate does not fill is returned as nil.
func shapeResults(out []reflect.Value, candidate, target reflect.Type) []reflect.Value {
	candVals, candFail := capability.SplitResults(candidate)
	reqVals, reqFail := capability.SplitResults(target)

	res := make([]reflect.Value, 0, target.NumOut())
	for i, t := range reqVals {
		res = append(res, convertValue(out[i], t))
	}
	if reqFail == nil {
		return res
	}
	if candFail == nil || isNil(out[len(candVals)]) {
		return append(res, reflect.Zero(reqFail))
	}
	return append(res, out[len(candVals)].Convert(reqFail))
}

func convertValue(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}
	return v.Convert(t)
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}

// Result returns out[i] as R, or the zero R when the slot holds nil.
func Result[R any](out []any, i int) R {
	var zero R
	if i >= len(out) || out[i] == nil {
		return zero
	}
	return out[i].(R)
}

// Err returns out[i] as an error, or nil.
func Err(out []any, i int) error {
	return Result[error](out, i)
}
