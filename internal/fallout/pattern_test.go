package fallout_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/tables"
)

var _ = Describe("Fallout pattern", func() {
	var tabs fallout.Tables

	BeforeEach(func() {
		log, _ := logtest.NewNullLogger()
		cat, err := tables.Default(log)
		Expect(err).NotTo(HaveOccurred())
		tabs, err = fallout.LoadTables(cat)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("one megaton in a steady wind", func() {
		var f *fallout.Field

		BeforeEach(func() {
			sc := fallout.Scenario{YieldKt: 1000, Wind: fallout.Wind{Speed: 10, Direction: 270}}
			grid := fallout.Grid{
				DownwindMin: -20e3, DownwindMax: 300e3, Nx: 161,
				CrosswindMin: -50e3, CrosswindMax: 50e3, Ny: 101,
			}
			var err error
			f, err = fallout.Evaluate(sc, grid, tabs)
			Expect(err).NotTo(HaveOccurred())
		})

		It("peaks downwind on the wind axis", func() {
			peak, x, y := f.PeakDose()
			Expect(peak).To(BeNumerically(">", 0))
			Expect(x).To(BeNumerically(">", 0))
			Expect(y).To(BeZero())
		})

		It("is elongated along the wind", func() {
			peak, _, _ := f.PeakDose()
			dx, dy, ok := fallout.Extent(f.X, f.Y, f.Dose, peak/100)
			Expect(ok).To(BeTrue())
			Expect(dx).To(BeNumerically(">", 3*dy))
		})

		It("deposits no more than the source term", func() {
			total := f.TotalDeposit()
			Expect(total).To(BeNumerically("<=", f.Source.Activity))
			Expect(total).To(BeNumerically(">", 0.5*f.Source.Activity))
		})

		It("is symmetric across the wind axis", func() {
			ny := f.Ny()
			for j := 0; j < ny/2; j++ {
				for i := range f.X {
					a, b := f.Dose[j][i], f.Dose[ny-1-j][i]
					Expect(a).To(BeNumerically("~", b, 1e-9*math.Max(a, 1)))
				}
			}
		})

		It("arrives later further downwind", func() {
			row := f.Centerline(f.Arrival)
			for i := 1; i < len(row); i++ {
				if f.X[i] > 0 {
					Expect(row[i]).To(BeNumerically(">=", row[i-1]))
				}
			}
		})

		It("accumulates dose monotonically", func() {
			_, i, j := fallout.Peak(f.Dose)
			prev := 0.0
			for _, t := range []float64{0.5, 1, 2, 6, 24, 168, 720, 2000} {
				d := f.DoseAt(i, j, t)
				Expect(d).To(BeNumerically(">=", prev))
				prev = d
			}
			Expect(prev).To(Equal(f.Dose[j][i]))
		})
	})

	Context("without wind", func() {
		It("is circular about ground zero", func() {
			sc := fallout.Scenario{YieldKt: 1000}
			grid := fallout.Grid{
				DownwindMin: -20e3, DownwindMax: 20e3, Nx: 81,
				CrosswindMin: -20e3, CrosswindMax: 20e3, Ny: 81,
			}
			f, err := fallout.Evaluate(sc, grid, tabs)
			Expect(err).NotTo(HaveOccurred())

			_, x, y := f.PeakDose()
			Expect(x).To(BeZero())
			Expect(y).To(BeZero())

			for j := range f.Y {
				for i := range f.X {
					a := f.Dose[j][i]
					tol := 1e-12 * a
					Expect(f.Dose[j][80-i]).To(BeNumerically("~", a, tol))
					Expect(f.Dose[80-j][i]).To(BeNumerically("~", a, tol))
					Expect(f.Dose[i][j]).To(BeNumerically("~", a, tol))
				}
			}
		})
	})

	Context("with a small yield", func() {
		It("flags the result as low reliability", func() {
			sc := fallout.Scenario{YieldKt: 10, Wind: fallout.Wind{Speed: 1.03}}
			f, err := fallout.Evaluate(sc, fallout.Grid{
				DownwindMin: -5e3, DownwindMax: 40e3, Nx: 91,
				CrosswindMin: -10e3, CrosswindMax: 10e3, Ny: 41,
			}, tabs)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.LowReliability).To(BeTrue())
			Expect(f.Source.Table).To(Equal(tables.WSEG10SourceLow))
		})
	})
})
