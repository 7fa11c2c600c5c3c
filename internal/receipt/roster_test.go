package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func optionLabels(options []SplitOption) []string {
	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = o.Label
	}
	return labels
}

var _ = Describe("Roster", func() {
	Describe("the household roster", func() {
		var roster *Roster

		BeforeEach(func() {
			roster = defaultRoster()
		})

		It("should offer the configured splits in order", func() {
			Expect(optionLabels(roster.Options())).To(Equal([]string{"L", "G", "A", "LG", "LGA"}))
		})

		It("should resolve split members in roster order", func() {
			option, ok := roster.Option("LGA")
			Expect(ok).To(BeTrue())
			Expect(option.Members).To(Equal(Split{"Lili", "Gergő", "Ádi"}))
		})

		It("should accept labels typed in another order or case", func() {
			option, ok := roster.Option("gl")
			Expect(ok).To(BeTrue())
			Expect(option.Label).To(Equal("LG"))
		})

		It("should not offer splits outside the configured list", func() {
			_, ok := roster.Option("GA")
			Expect(ok).To(BeFalse())
			_, ok = roster.Option("X")
			Expect(ok).To(BeFalse())
		})

		DescribeTable("Lookup",
			func(input, expected string) {
				name, ok := roster.Lookup(input)
				Expect(ok).To(BeTrue())
				Expect(name).To(Equal(expected))
			},
			Entry("exact name", "Gergő", "Gergő"),
			Entry("lower case", "lili", "Lili"),
			Entry("without accents", "Adi", "Ádi"),
			Entry("abbreviation", "A", "Ádi"),
			Entry("lower-case abbreviation", "g", "Gergő"),
		)

		It("should not find strangers", func() {
			_, ok := roster.Lookup("Bob")
			Expect(ok).To(BeFalse())
		})

		It("should label ad hoc member sets", func() {
			Expect(roster.Label(Split{"Ádi", "Lili"})).To(Equal("LA"))
		})

		Describe("Normalize", func() {
			It("should order members by roster position", func() {
				split, err := roster.Normalize([]string{"A", "lili"})
				Expect(err).NotTo(HaveOccurred())
				Expect(split).To(Equal(Split{"Lili", "Ádi"}))
			})

			It("should reject an empty split", func() {
				_, err := roster.Normalize(nil)
				Expect(err).To(MatchError(ErrEmptySplit))
			})

			It("should reject unknown members", func() {
				_, err := roster.Normalize([]string{"Lili", "Bob"})
				Expect(err).To(MatchError(ErrUnknownParticipant))
			})

			It("should reject the same person twice", func() {
				_, err := roster.Normalize([]string{"Lili", "L"})
				Expect(err).To(MatchError(ErrDuplicateParticipant))
			})
		})
	})

	When("no split labels are configured", func() {
		It("should offer every subset, smallest first", func() {
			roster, err := NewRoster([]string{"Lili", "Gergő", "Ádi"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(optionLabels(roster.Options())).To(Equal([]string{
				"L", "G", "A", "LG", "LA", "GA", "LGA",
			}))
		})

		It("should refuse rosters too large to enumerate", func() {
			names := []string{"A1", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
			_, err := NewRoster(names, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	When("names share a first letter", func() {
		var roster *Roster

		BeforeEach(func() {
			var err error
			roster, err = NewRoster([]string{"Lili", "Lars", "Gergő"}, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should lengthen abbreviations and join them with a plus", func() {
			Expect(roster.Label(Split{"Lili", "Lars"})).To(Equal("Li+La"))
			Expect(roster.Label(Split{"Gergő"})).To(Equal("G"))
		})

		It("should parse the joined labels", func() {
			option, ok := roster.Option("La+G")
			Expect(ok).To(BeTrue())
			Expect(option.Members).To(Equal(Split{"Lars", "Gergő"}))
		})
	})

	When("one name is a prefix of another", func() {
		It("should keep the shorter name whole", func() {
			roster, err := NewRoster([]string{"Ann", "Anna"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(roster.Label(Split{"Ann", "Anna"})).To(Equal("Ann+Anna"))

			option, ok := roster.Option("Ann")
			Expect(ok).To(BeTrue())
			Expect(option.Members).To(Equal(Split{"Ann"}))
		})
	})

	It("should reject duplicate participants", func() {
		_, err := NewRoster([]string{"Lili", "lili"}, nil)
		Expect(err).To(MatchError(ErrDuplicateParticipant))
	})

	It("should reject an empty roster", func() {
		_, err := NewRoster([]string{" ", ""}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("should reject labels naming strangers", func() {
		_, err := NewRoster([]string{"Lili", "Gergő"}, []string{"LX"})
		Expect(err).To(MatchError(ErrUnknownSplit))
	})

	It("should collapse labels that name the same members", func() {
		roster, err := NewRoster([]string{"Lili", "Gergő"}, []string{"LG", "GL"})
		Expect(err).NotTo(HaveOccurred())
		Expect(optionLabels(roster.Options())).To(Equal([]string{"LG"}))
	})
})
