package common_test

import (
	"primor/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Money", func() {
	Describe("FormatMoney", func() {
		It("should group thousands and keep two decimals", func() {
			Expect(common.FormatMoney(decimal.RequireFromString("0"))).To(Equal("R$ 0.00"))
			Expect(common.FormatMoney(decimal.RequireFromString("150.5"))).To(Equal("R$ 150.50"))
			Expect(common.FormatMoney(decimal.RequireFromString("1234.567"))).To(Equal("R$ 1,234.57"))
			Expect(common.FormatMoney(decimal.RequireFromString("1234567"))).To(Equal("R$ 1,234,567.00"))
			Expect(common.FormatMoney(decimal.RequireFromString("-980"))).To(Equal("R$ -980.00"))
		})
	})

	Describe("ParseMoney", func() {
		It("should accept comma as decimal separator", func() {
			v, err := common.ParseMoney("150,50")
			Expect(err).To(BeNil())
			Expect(v.String()).To(Equal("150.5"))

			v, err = common.ParseMoney("1,500.25")
			Expect(err).To(BeNil())
			Expect(v.String()).To(Equal("1500.25"))

			_, err = common.ParseMoney("abc")
			Expect(err).ToNot(BeNil())
		})
	})
})
