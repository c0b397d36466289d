package flags_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/cli/flags"
)

var _ = Describe("Backend flag", func() {
	var value *flags.EnumFlag

	BeforeEach(func() {
		flag, ok := flags.NewBackendFlag().(*cli.GenericFlag)
		Expect(ok).To(BeTrue())

		value, ok = flag.Value.(*flags.EnumFlag)
		Expect(ok).To(BeTrue())
	})

	It("defaults to aws", func() {
		Expect(value.String()).To(Equal("aws"))
		Expect(value.Get()).To(Equal("aws"))
	})

	It("accepts a supported backend", func() {
		Expect(value.Set("docker")).To(Succeed())
		Expect(value.String()).To(Equal("docker"))
	})

	It("rejects an unknown backend", func() {
		Expect(value.Set("k8s")).To(MatchError(ContainSubstring("allowed values are [aws docker]")))
		Expect(value.String()).To(Equal("aws"))
	})
})
