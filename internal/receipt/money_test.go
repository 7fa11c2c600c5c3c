package receipt

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cents", func() {
	DescribeTable("ParseAmount",
		func(input string, expected Cents) {
			amount, err := ParseAmount(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(amount).To(Equal(expected))
		},
		Entry("comma separator", "1,92", Cents(192)),
		Entry("dot separator", "1.92", Cents(192)),
		Entry("negative", "-0,50", Cents(-50)),
		Entry("whole number", "3", Cents(300)),
		Entry("surrounding space", " 23,45 ", Cents(2345)),
	)

	It("should reject text that is not an amount", func() {
		_, err := ParseAmount("EUR")
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("Share",
		func(price Cents, n int, expected Cents) {
			Expect(price.Share(n)).To(Equal(expected))
		},
		Entry("even split", Cents(192), 2, Cents(96)),
		Entry("three ways", Cents(300), 3, Cents(100)),
		Entry("rounds down below half", Cents(100), 3, Cents(33)),
		Entry("rounds half away from zero", Cents(5), 2, Cents(3)),
		Entry("negative half away from zero", Cents(-5), 2, Cents(-3)),
		Entry("single member keeps the price", Cents(145), 1, Cents(145)),
		Entry("no members", Cents(145), 0, Cents(0)),
	)

	It("should format with a currency symbol", func() {
		Expect(Cents(196).Format("€")).To(Equal("€1.96"))
		Expect(Cents(-50).String()).To(Equal("-0.50"))
		Expect(Cents(0).String()).To(Equal("0.00"))
	})

	It("should encode as a number in currency units", func() {
		data, err := json.Marshal(map[string]Cents{"price": 192})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"price":1.92}`))
	})

	It("should decode numbers and strings", func() {
		var v struct {
			A Cents `json:"a"`
			B Cents `json:"b"`
		}
		Expect(json.Unmarshal([]byte(`{"a":1.92,"b":"-0,50"}`), &v)).To(Succeed())
		Expect(v.A).To(Equal(Cents(192)))
		Expect(v.B).To(Equal(Cents(-50)))
	})
})
