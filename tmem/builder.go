package tmem

import "github.com/sarchlab/tmemsim/hooking"

// Builder can build cache state tables.
type Builder struct {
	hooks    []hooking.Hook
	snapshot []byte
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithHook registers a hook on the table being built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// WithSnapshot makes the table start from a saved snapshot instead of the
// reset state.
func (b Builder) WithSnapshot(snapshot []byte) Builder {
	b.snapshot = snapshot
	return b
}

// Build creates a table with the given name. It panics if the snapshot
// cannot be decoded.
func (b Builder) Build(name string) *Tmem {
	t := &Tmem{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
	}

	if b.snapshot != nil {
		if err := t.UnmarshalBinary(b.snapshot); err != nil {
			panic(err)
		}
	}

	for _, h := range b.hooks {
		t.AcceptHook(h)
	}

	return t
}
