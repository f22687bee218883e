package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	id        int
	order     *[]int
	positions []string
}

func (h *countingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos.Name)
	if h.order != nil {
		*h.order = append(*h.order, h.id)
	}
}

// tallyHook is a value hook that cannot be compared with ==.
type tallyHook struct {
	counts map[string]int
}

func (h tallyHook) Func(ctx HookCtx) {
	h.counts[ctx.Pos.Name]++
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  *HookPos
	)

	BeforeEach(func() {
		base = NewHookableBase()
		pos = &HookPos{Name: "Test"}
	})

	It("should start without hooks", func() {
		Expect(base.NumHooks()).To(Equal(0))
		Expect(base.Hooks()).To(BeEmpty())
	})

	It("should invoke hooks in registration order", func() {
		order := []int{}
		base.AcceptHook(&countingHook{id: 1, order: &order})
		base.AcceptHook(&countingHook{id: 2, order: &order})

		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(order).To(Equal([]int{1, 2}))
		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should pass the context through", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		base.InvokeHook(HookCtx{Domain: base, Pos: pos, Item: 3})
		base.InvokeHook(HookCtx{Domain: base, Pos: pos, Item: 4})

		Expect(h.positions).To(Equal([]string{"Test", "Test"}))
	})

	It("should panic when the same hook is registered twice", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should accept hooks of non-comparable value types", func() {
		h := tallyHook{counts: map[string]int{}}

		Expect(func() {
			base.AcceptHook(h)
			base.AcceptHook(tallyHook{counts: map[string]int{}})
		}).NotTo(Panic())

		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(h.counts).To(HaveKeyWithValue("Test", 1))
	})

	It("should panic on a nil hook", func() {
		Expect(func() { base.AcceptHook(nil) }).To(Panic())
	})
})
