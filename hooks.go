package pgmodel

import (
	"context"

	"github.com/syssam/pgmodel/dialect"
)

// HookType names one of the six lifecycle extension points.
type HookType string

// Hook types.
const (
	BeforeCreate  HookType = "beforeCreate"
	AfterCreate   HookType = "afterCreate"
	BeforeUpdate  HookType = "beforeUpdate"
	AfterUpdate   HookType = "afterUpdate"
	BeforeDestroy HookType = "beforeDestroy"
	AfterDestroy  HookType = "afterDestroy"
)

// Operation is a hooked model operation.
type Operation string

// Hooked operations.
const (
	OpCreate  Operation = "Create"
	OpUpdate  Operation = "Update"
	OpDestroy Operation = "Destroy"
)

// Hook runs around a model operation. Before hooks receive the operation
// input as payload, after hooks its result. columns lists every column
// name of the table, timestamps included. A before hook returning an
// error stops the operation.
type Hook func(ctx context.Context, client dialect.ExecQuerier, payload any, columns []string) error

// Hooks holds the optional hook for every extension point.
type Hooks struct {
	BeforeCreate  Hook
	AfterCreate   Hook
	BeforeUpdate  Hook
	AfterUpdate   Hook
	BeforeDestroy Hook
	AfterDestroy  Hook
}

// Set installs fn at the extension point typ.
func (h *Hooks) Set(typ HookType, fn Hook) error {
	switch typ {
	case BeforeCreate:
		h.BeforeCreate = fn
	case AfterCreate:
		h.AfterCreate = fn
	case BeforeUpdate:
		h.BeforeUpdate = fn
	case AfterUpdate:
		h.AfterUpdate = fn
	case BeforeDestroy:
		h.BeforeDestroy = fn
	case AfterDestroy:
		h.AfterDestroy = fn
	default:
		return invalidHookType()
	}
	return nil
}

// around returns the before and after hooks of op.
func (h *Hooks) around(op Operation) (before, after Hook, err error) {
	switch op {
	case OpCreate:
		return h.BeforeCreate, h.AfterCreate, nil
	case OpUpdate:
		return h.BeforeUpdate, h.AfterUpdate, nil
	case OpDestroy:
		return h.BeforeDestroy, h.AfterDestroy, nil
	default:
		return nil, nil, invalidHookType()
	}
}

func invalidHookType() error {
	return newError(CodeInvalidHookType,
		"Hook type must be one of 'beforeCreate', 'afterCreate', 'beforeUpdate', 'afterUpdate', 'beforeDestroy', 'afterDestroy'")
}

// RunWithHooks runs action between the before and after hooks of op.
// The three steps run in order; an error from any of them is returned
// and stops the rest. When action fails its result is still returned,
// so partial results such as those of Table.InsertMany reach the caller.
func RunWithHooks[T any](ctx context.Context, m *Model, op Operation, input any, action func(context.Context) (T, error)) (T, error) {
	var zero T
	before, after, err := m.hooks.around(op)
	if err != nil {
		return zero, err
	}
	client := m.table.Client()
	columns := m.table.ColumnNames(true)
	if before != nil {
		if err := before(ctx, client, input, columns); err != nil {
			return zero, err
		}
	}
	result, err := action(ctx)
	if err != nil {
		return result, err
	}
	if after != nil {
		if err := after(ctx, client, result, columns); err != nil {
			return result, err
		}
	}
	return result, nil
}
