package field_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/driftfield/internal/field"
)

var _ = Describe("LinkAlpha", func() {
	DescribeTable("opacity by distance",
		func(d, want float64) {
			Expect(field.LinkAlpha(d, 120, 0.2)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("touching", 0.0, 0.2),
		Entry("halfway", 60.0, 0.1),
		Entry("at threshold", 120.0, 0.0),
		Entry("beyond threshold", 250.0, 0.0),
	)

	It("never increases with distance", func() {
		prev := field.LinkAlpha(0, 120, 0.2)
		for d := 0.5; d <= 130; d += 0.5 {
			cur := field.LinkAlpha(d, 120, 0.2)
			Expect(cur).To(BeNumerically("<=", prev))
			prev = cur
		}
	})
})
