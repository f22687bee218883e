package tmem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("UnitSet", func() {
	It("should hold added units", func() {
		s := NewUnitSet(1, 5)

		Expect(s.Has(1)).To(BeTrue())
		Expect(s.Has(5)).To(BeTrue())
		Expect(s.Has(0)).To(BeFalse())
		Expect(s.Len()).To(Equal(2))
	})

	It("should list units in ascending order", func() {
		s := NewUnitSet(7, 0, 3)

		Expect(s.Units()).To(Equal([]int{0, 3, 7}))
		Expect(s.String()).To(Equal("{0,3,7}"))
	})

	It("should drop bits above the last unit", func() {
		s := UnitSetFromMask(0x1FF)

		Expect(s.Len()).To(Equal(NumUnits))
		Expect(s.Has(8)).To(BeFalse())
	})

	It("should be empty by default", func() {
		var s UnitSet

		Expect(s.Units()).To(BeEmpty())
		Expect(s.String()).To(Equal("{}"))
	})
})
