package field_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"benthosim/internal/field"
)

var _ = Describe("Grid", func() {
	It("starts zeroed with the requested dimensions", func() {
		g := field.NewGrid(3, 4)
		rows, cols := g.Dims()
		Expect(rows).To(Equal(3))
		Expect(cols).To(Equal(4))
		Expect(g.At(2, 3)).To(BeZero())
	})

	It("clones without aliasing", func() {
		g := field.NewGridFill(2, 2, 5)
		c := g.Clone()
		c.Set(0, 0, 99)
		Expect(g.At(0, 0)).To(Equal(5.0))
		Expect(c.At(0, 0)).To(Equal(99.0))
	})

	It("builds from rectangular row data and rejects ragged rows", func() {
		g, err := field.FromRows([][]float64{{1, 2}, {3, 4}})
		Expect(err).NotTo(HaveOccurred())
		Expect(g.At(1, 0)).To(Equal(3.0))

		_, err = field.FromRows([][]float64{{1, 2}, {3}})
		Expect(err).To(HaveOccurred())
	})

	It("reports shape compatibility", func() {
		g := field.NewGrid(3, 3)
		Expect(g.SameShape(field.NewGrid(3, 3))).To(BeTrue())
		Expect(g.SameShape(field.NewGrid(3, 2))).To(BeFalse())
		Expect(g.SameShape(nil)).To(BeFalse())
	})

	It("summarizes cell values", func() {
		g, err := field.FromRows([][]float64{{1, 2}, {3, 6}})
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Min()).To(Equal(1.0))
		Expect(g.Max()).To(Equal(6.0))
		Expect(g.Mean()).To(Equal(3.0))
	})

	It("detects non-finite cells", func() {
		g := field.NewGridFill(2, 2, 1)
		Expect(g.IsFinite()).To(BeTrue())
		g.Set(1, 1, math.Inf(1))
		Expect(g.IsFinite()).To(BeFalse())
	})
})

var _ = Describe("Stack", func() {
	build := func(vals ...float64) *field.Stack {
		layers := make([]*field.Grid, len(vals))
		for i, v := range vals {
			layers[i] = field.NewGridFill(2, 3, v)
		}
		st, err := field.NewStack(layers)
		Expect(err).NotTo(HaveOccurred())
		return st
	}

	It("preserves layer order and dimensions", func() {
		st := build(10, 20, 30)
		Expect(st.Len()).To(Equal(3))
		rows, cols := st.Dims()
		Expect(rows).To(Equal(2))
		Expect(cols).To(Equal(3))
		Expect(st.Layer(1).At(0, 0)).To(Equal(20.0))
	})

	It("extracts a single-cell trace across time", func() {
		st := build(10, 20, 30)
		Expect(st.Trace(1, 2)).To(Equal([]float64{10, 20, 30}))
	})

	It("computes shared bounds across layers", func() {
		st := build(10, 50, 30)
		lo, hi := st.Bounds()
		Expect(lo).To(Equal(10.0))
		Expect(hi).To(Equal(50.0))
	})

	It("rejects empty, nil and mismatched layers", func() {
		_, err := field.NewStack(nil)
		Expect(err).To(HaveOccurred())

		_, err = field.NewStack([]*field.Grid{field.NewGrid(2, 2), nil})
		Expect(err).To(HaveOccurred())

		_, err = field.NewStack([]*field.Grid{field.NewGrid(2, 2), field.NewGrid(3, 2)})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Uniform", func() {
	It("draws every cell inside the bounds", func() {
		g := field.Uniform(10, 10, 0, 1000, 7)
		for _, v := range g.Values() {
			Expect(v).To(BeNumerically(">=", 0))
			Expect(v).To(BeNumerically("<", 1000))
		}
	})

	It("is deterministic for a fixed seed", func() {
		a := field.Uniform(10, 10, 0, 1000, 7)
		b := field.Uniform(10, 10, 0, 1000, 7)
		Expect(a.Values()).To(Equal(b.Values()))

		c := field.Uniform(10, 10, 0, 1000, 8)
		Expect(a.Values()).NotTo(Equal(c.Values()))
	})
})

var _ = Describe("GaussianFootprint", func() {
	It("peaks at the disturbance center and decays outward", func() {
		w := field.GaussianFootprint(10, 10, 4, 6, 2.0, 0.9)
		Expect(w.At(4, 6)).To(Equal(0.9))
		Expect(w.At(4, 7)).To(BeNumerically("<", w.At(4, 6)))
		Expect(w.At(4, 8)).To(BeNumerically("<", w.At(4, 7)))
		Expect(w.At(0, 0)).To(BeNumerically("<", w.At(4, 8)))
	})

	It("is symmetric around the center", func() {
		w := field.GaussianFootprint(9, 9, 4, 4, 1.5, 0.8)
		Expect(w.At(4, 2)).To(Equal(w.At(4, 6)))
		Expect(w.At(2, 4)).To(Equal(w.At(6, 4)))
		Expect(w.At(2, 2)).To(Equal(w.At(6, 6)))
	})

	It("never exceeds the peak weight", func() {
		w := field.GaussianFootprint(10, 10, 5, 5, 3.0, 0.9)
		Expect(w.Max()).To(BeNumerically("<=", 0.9))
		Expect(w.Min()).To(BeNumerically(">=", 0))
	})
})
