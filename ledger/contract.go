package ledger

import (
	"fmt"
	"reflect"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// Contract is code that can be deployed on the ledger. Entry points mutate
// the contract's own storage and may emit one-way operations; views only read.
type Contract interface {
	// Kind names the code so a restarted ledger can re-attach it.
	Kind() string
	EntryPoints() map[string]EntryPoint
	Views() map[string]ViewPoint
}

// EntryPoint is a typed mutation handler registered with Entry.
type EntryPoint struct {
	param reflect.Type
	call  func(cc *CallContext, param any) error
}

// Entry wraps fn as an entry point accepting parameters of shape P.
func Entry[P any](fn func(cc *CallContext, param P) error) EntryPoint {
	return EntryPoint{
		param: reflect.TypeFor[P](),
		call: func(cc *CallContext, param any) error {
			return fn(cc, param.(P))
		},
	}
}

// ViewPoint is a typed read-only handler registered with ViewOf.
type ViewPoint struct {
	param  reflect.Type
	result reflect.Type
	call   func(vc *ViewContext, param any) (any, error)
}

// ViewOf wraps fn as a view accepting P and returning R.
func ViewOf[P, R any](fn func(vc *ViewContext, param P) (R, error)) ViewPoint {
	return ViewPoint{
		param:  reflect.TypeFor[P](),
		result: reflect.TypeFor[R](),
		call: func(vc *ViewContext, param any) (any, error) {
			return fn(vc, param.(P))
		},
	}
}

// sameShape reports whether a value of type have can stand in for want.
// Distinct named types are accepted when their underlying shapes are identical,
// which lets a caller declare its own copy of the callee's parameter record.
func sameShape(have, want reflect.Type) bool {
	if have == nil || want == nil {
		return false
	}
	if have == want {
		return true
	}
	return have.Kind() == want.Kind() && have.ConvertibleTo(want)
}

func coerce(value any, want reflect.Type) (any, bool) {
	have := reflect.TypeOf(value)
	if !sameShape(have, want) {
		return nil, false
	}
	if have == want {
		return value, true
	}
	return reflect.ValueOf(value).Convert(want).Interface(), true
}

func invalidEntry(target interfaces.Address, name string) error {
	return interfaces.Fail(interfaces.ErrInvalidView, fmt.Sprintf("Invalid entry point %s on %s", name, target.Hex()))
}

func invalidView() error {
	return interfaces.Fail(interfaces.ErrInvalidView, "Invalid view")
}
