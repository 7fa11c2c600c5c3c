package receipt

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Result", func() {
	completed := func(parsed ParsedReceipt, payer string, labels ...string) *Result {
		session := NewSession("session-1", parsed, defaultRoster(), time.Now())
		Expect(session.SelectPayer(payer)).To(Succeed())
		if len(labels) > 0 {
			Expect(session.AssignAll(labels)).To(Succeed())
		}
		result, err := session.Result()
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("should render the text report", func() {
		total := Cents(492)
		result := completed(ParsedReceipt{
			Items: []LineItem{
				{Name: "Tomatenblokjes", TranslatedName: "Diced tomatoes", Amount: "3 x 0,64", Price: 192},
				{Name: "Kaas", TranslatedName: "Cheese", Price: 300},
			},
			Total: &total,
		}, "Lili", "LG", "LGA")

		Expect(result.Report("€")).To(Equal(
			"Lili paid €4.92 in total\n" +
				"Splits:\n" +
				"Gergő pays Lili €1.96\n" +
				"Ádi pays Lili €1.00\n" +
				"\n" +
				"Full breakdown:\n" +
				"Tomatenblokjes (Diced tomatoes)  3 x 0,64  €1.92  (LG)\n" +
				"Kaas (Cheese)    €3.00  (LGA)\n"))
	})

	It("should fall back to the items sum without a total line", func() {
		result := completed(ParsedReceipt{
			Items: []LineItem{
				{Name: "Kaas", TranslatedName: "Cheese", Price: 300},
				{Name: "In prijs verlaagd", TranslatedName: "Price reduced", Price: -50},
			},
		}, "Gergő", "LGA", "G")

		Expect(result.Total).To(Equal(Cents(250)))
		Expect(result.ItemsSum).To(Equal(Cents(250)))
		Expect(result.TotalComputed).To(BeTrue())
		Expect(result.Report("$")).To(HavePrefix("Gergő paid $2.50 in total (sum of items, no total line found)\n"))
	})

	It("should keep the total separate from the items sum", func() {
		total := Cents(999)
		result := completed(ParsedReceipt{
			Items: []LineItem{{Name: "Kaas", TranslatedName: "Cheese", Price: 300}},
			Total: &total,
		}, "Ádi", "L")

		Expect(result.Total).To(Equal(Cents(999)))
		Expect(result.ItemsSum).To(Equal(Cents(300)))
		Expect(result.Debts).To(Equal([]Debt{
			{Participant: "Lili", Amount: 300},
			{Participant: "Gergő", Amount: 0},
		}))
	})
})
