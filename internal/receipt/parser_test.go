package receipt

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseItems", func() {
	var (
		text      string
		translate TranslateFunc
		parsed    ParsedReceipt
	)

	BeforeEach(func() {
		translate = nil
	})

	JustBeforeEach(func() {
		parsed = ParseItems(text, translate)
	})

	When("a line carries a quantity", func() {
		BeforeEach(func() {
			text = "Tomatenblokjes 3 x 0,64 1,92 B"
		})

		It("should extract name, amount and price", func() {
			Expect(parsed.Items).To(Equal([]LineItem{{
				Name:           "Tomatenblokjes",
				TranslatedName: "Tomatenblokjes",
				Amount:         "3 x 0,64",
				Price:          192,
			}}))
		})
	})

	When("a line has no quantity", func() {
		BeforeEach(func() {
			text = "Halfvolle melk 1,29"
		})

		It("should leave the amount empty", func() {
			Expect(parsed.Items).To(HaveLen(1))
			Expect(parsed.Items[0].Name).To(Equal("Halfvolle melk"))
			Expect(parsed.Items[0].Amount).To(BeEmpty())
			Expect(parsed.Items[0].Price).To(Equal(Cents(129)))
		})
	})

	When("a weight line follows an item", func() {
		BeforeEach(func() {
			text = "Bananen 1,45 B\n1,20 kg x 2,99 EUR\nKaas 3,00"
		})

		It("should attach the weight to the preceding item", func() {
			Expect(parsed.Items).To(HaveLen(2))
			Expect(parsed.Items[0].Amount).To(Equal("1,20 kg x 2,99"))
			Expect(parsed.Items[1].Amount).To(BeEmpty())
		})
	})

	DescribeTable("weight lines with trailing text",
		func(weightLine string) {
			result := ParseItems("Bananen 1,45 B\n"+weightLine+"\nKaas 3,00", nil)
			Expect(result.Items).To(HaveLen(2))
			Expect(result.Items[0].Name).To(Equal("Bananen"))
			Expect(result.Items[0].Amount).To(Equal("1,20 kg x 2,99"))
			Expect(result.Items[0].Price).To(Equal(Cents(145)))
			Expect(result.Items[1].Name).To(Equal("Kaas"))
			Expect(result.Dropped).To(BeZero())
		},
		Entry("unit after the currency", "1,20 kg x 2,99 EUR/kg"),
		Entry("line total after the currency", "1,20 kg x 2,99 EUR 3,59"),
		Entry("lower-case units", "1,20 KG x 2,99 eur"),
	)

	When("a weight line comes before any item", func() {
		BeforeEach(func() {
			text = "0,50 kg x 1,00 EUR\nKaas 3,00"
		})

		It("should discard it", func() {
			Expect(parsed.Items).To(HaveLen(1))
			Expect(parsed.Items[0].Amount).To(BeEmpty())
			Expect(parsed.Dropped).To(BeZero())
		})
	})

	When("the receipt has a total line", func() {
		BeforeEach(func() {
			text = "Kaas 3,00\nTotaal 23,45\nKoffie 4,99\nPinnen 23,45"
		})

		It("should record the total", func() {
			Expect(parsed.Total).NotTo(BeNil())
			Expect(*parsed.Total).To(Equal(Cents(2345)))
		})

		It("should ignore everything after it", func() {
			Expect(parsed.Items).To(HaveLen(1))
			Expect(parsed.Items[0].Name).To(Equal("Kaas"))
		})
	})

	When("the total line has a colon", func() {
		BeforeEach(func() {
			text = "Kaas 3,00\nTotaal: 3,00"
		})

		It("should still find the total", func() {
			Expect(*parsed.Total).To(Equal(Cents(300)))
		})
	})

	When("the total line has no readable amount", func() {
		BeforeEach(func() {
			text = "Kaas 3,00\nTotaal\nKoffie 4,99"
		})

		It("should stop without a total", func() {
			Expect(parsed.Total).To(BeNil())
			Expect(parsed.Items).To(HaveLen(1))
		})
	})

	When("the total line is upper case", func() {
		BeforeEach(func() {
			text = "Melk 1,29\nTOTAAL 4,29\nKaas 3,00"
		})

		It("should still stop at it", func() {
			Expect(parsed.Items).To(HaveLen(1))
			Expect(parsed.Items[0].Name).To(Equal("Melk"))
			Expect(*parsed.Total).To(Equal(Cents(429)))
		})
	})

	When("a word merely starts with the total marker", func() {
		BeforeEach(func() {
			text = "Kaas 3,00\nTotaalkorting -0,20\nKoffie 4,99"
		})

		It("should keep parsing", func() {
			Expect(parsed.Total).To(BeNil())
			Expect(parsed.Items).To(HaveLen(3))
		})
	})

	When("a subtotal line appears", func() {
		BeforeEach(func() {
			text = "Kaas 3,00\nSubtotaal 3,00\nKoffie 4,99"
		})

		It("should not mistake it for the total", func() {
			Expect(parsed.Total).To(BeNil())
			Expect(parsed.Items).To(HaveLen(3))
			Expect(parsed.Items[1].Name).To(Equal("Subtotaal"))
		})
	})

	DescribeTable("discount lines",
		func(line string, name string, price Cents) {
			result := ParseItems("Kaas 3,00\n"+line, nil)
			Expect(result.Items).To(HaveLen(2))
			Expect(result.Items[1].Name).To(Equal(name))
			Expect(result.Items[1].Price).To(Equal(price))
			Expect(result.Items[1].Amount).To(BeEmpty())
		},
		Entry("price reduced", "In prijs verlaagd -0,50", "In prijs verlaagd", Cents(-50)),
		Entry("price reduced with tax letter", "In prijs verlaagd -0,50 B", "In prijs verlaagd", Cents(-50)),
		Entry("loyalty card", "Lidl Plus korting -1,00", "Lidl Plus korting", Cents(-100)),
		Entry("bonus", "Bonus korting -0,75 A", "Bonus korting", Cents(-75)),
		Entry("percentage", "Korting 25% -0,30", "Korting 25%", Cents(-30)),
	)

	When("lines match nothing", func() {
		BeforeEach(func() {
			text = "ALBERT HEIJN\n\n   \nFiliaal 1234\nKaas 3,00\n------"
		})

		It("should count the dropped lines and skip blanks", func() {
			Expect(parsed.Items).To(HaveLen(1))
			Expect(parsed.Dropped).To(Equal(3))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should return no items and no total", func() {
			Expect(parsed.Items).To(BeEmpty())
			Expect(parsed.Items).NotTo(BeNil())
			Expect(parsed.Total).To(BeNil())
		})
	})

	When("a translator is given", func() {
		var calls []string

		BeforeEach(func() {
			calls = nil
			text = "Tomatenblokjes 3 x 0,64 1,92 B\nIn prijs verlaagd -0,50\nTotaal 1,42"
			translate = func(name string) string {
				calls = append(calls, name)
				return strings.ToUpper(name)
			}
		})

		It("should translate every emitted item once", func() {
			Expect(calls).To(Equal([]string{"Tomatenblokjes", "In prijs verlaagd"}))
			Expect(parsed.Items[0].TranslatedName).To(Equal("TOMATENBLOKJES"))
			Expect(parsed.Items[0].Name).To(Equal("Tomatenblokjes"))
		})
	})

	It("should keep the total consistent with the items on a clean receipt", func() {
		result := ParseItems(sampleReceiptText, nil)
		Expect(result.ItemsSum()).To(Equal(*result.Total))
	})
})
