package ledger

import (
	"context"
	"reflect"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// maxOperations bounds the operations one submission may execute.
const maxOperations = 256

type operation struct {
	source     interfaces.Address
	sender     interfaces.Address
	target     interfaces.Address
	entrypoint string
	param      any
}

// execution holds the state of one submission or one external query.
type execution struct {
	ledger  *Ledger
	ov      *overlay
	queue   []operation
	applied int
}

// CallContext is handed to an entry point while it runs.
type CallContext struct {
	exec   *execution
	source interfaces.Address
	sender interfaces.Address
	self   interfaces.Address
}

// Source is the wallet that signed the submission.
func (cc *CallContext) Source() interfaces.Address { return cc.source }

// Sender is the immediate caller: the wallet for a direct call, the emitting
// contract for a forwarded operation.
func (cc *CallContext) Sender() interfaces.Address { return cc.sender }

// Self is the address of the running contract.
func (cc *CallContext) Self() interfaces.Address { return cc.self }

// Storage returns the running contract's own table.
func (cc *CallContext) Storage() Storage {
	return newContractStorage(cc.exec.ov, cc.self, false)
}

// Transfer queues a one-way call to entrypoint on target. It runs after the
// current entry point returns; its failure aborts the whole submission.
// The target and parameter shape are checked now.
func (cc *CallContext) Transfer(target interfaces.Address, entrypoint string, param any) error {
	ep, ok := cc.exec.ledger.entryPoint(target, entrypoint)
	if !ok {
		return invalidEntry(target, entrypoint)
	}
	coerced, ok := coerce(param, ep.param)
	if !ok {
		return invalidEntry(target, entrypoint)
	}
	cc.exec.queue = append(cc.exec.queue, operation{
		source:     cc.source,
		sender:     cc.self,
		target:     target,
		entrypoint: entrypoint,
		param:      coerced,
	})
	return nil
}

func (cc *CallContext) view(target interfaces.Address, name string, param any, want reflect.Type) (any, error) {
	return cc.exec.view(cc.self, target, name, param, want)
}

// ViewContext is handed to a view while it runs.
type ViewContext struct {
	exec   *execution
	caller interfaces.Address
	self   interfaces.Address
}

// Caller is the contract that requested the view, or the zero address for
// an external query.
func (vc *ViewContext) Caller() interfaces.Address { return vc.caller }

// Self is the address of the contract serving the view.
func (vc *ViewContext) Self() interfaces.Address { return vc.self }

// Storage returns a read-only handle on the contract's table.
func (vc *ViewContext) Storage() Storage {
	return newContractStorage(vc.exec.ov, vc.self, true)
}

func (vc *ViewContext) view(target interfaces.Address, name string, param any, want reflect.Type) (any, error) {
	return vc.exec.view(vc.self, target, name, param, want)
}

// Viewer can request synchronous read-only calls.
type Viewer interface {
	view(target interfaces.Address, name string, param any, want reflect.Type) (any, error)
}

// CallView calls the view name on target and returns its result as R.
// A missing contract or view, or a parameter or result of a different shape,
// fails with ErrInvalidView.
func CallView[R any](v Viewer, target interfaces.Address, name string, param any) (R, error) {
	var zero R
	res, err := v.view(target, name, param, reflect.TypeFor[R]())
	if err != nil {
		return zero, err
	}
	return res.(R), nil
}

// Query calls a view from outside the ledger against committed state.
func Query[R any](ctx context.Context, l *Ledger, target interfaces.Address, name string, param any) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	exec := &execution{ledger: l, ov: newOverlay(l.db)}
	res, err := exec.view(interfaces.Address{}, target, name, param, reflect.TypeFor[R]())
	if err != nil {
		return zero, err
	}
	return res.(R), nil
}

func (e *execution) view(caller, target interfaces.Address, name string, param any, want reflect.Type) (any, error) {
	vp, ok := e.ledger.viewPoint(target, name)
	if !ok {
		return nil, invalidView()
	}
	coerced, ok := coerce(param, vp.param)
	if !ok || !sameShape(vp.result, want) {
		return nil, invalidView()
	}
	res, err := vp.call(&ViewContext{exec: e, caller: caller, self: target}, coerced)
	if err != nil {
		return nil, err
	}
	out, _ := coerce(res, want)
	return out, nil
}

// run executes op and then every operation it emits, in FIFO order.
func (e *execution) run(op operation) error {
	e.queue = append(e.queue, op)
	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]

		if e.applied >= maxOperations {
			return interfaces.Fail(interfaces.ErrInvalidTransition, "Operation limit exceeded")
		}
		ep, ok := e.ledger.entryPoint(next.target, next.entrypoint)
		if !ok {
			return invalidEntry(next.target, next.entrypoint)
		}
		param, ok := coerce(next.param, ep.param)
		if !ok {
			return invalidEntry(next.target, next.entrypoint)
		}
		cc := &CallContext{exec: e, source: next.source, sender: next.sender, self: next.target}
		if err := ep.call(cc, param); err != nil {
			return err
		}
		e.applied++
	}
	return nil
}
