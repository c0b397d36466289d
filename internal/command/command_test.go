package command_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/zhulik/tps/internal/command"
	"github.com/zhulik/tps/testhelpers"
)

var _ = Describe("Exec", func() {
	var executor *command.Exec

	BeforeEach(func() {
		executor = command.NewExec(testhelpers.NewLogger())
	})

	Describe("Execute", func() {
		It("succeeds when the program exits with 0", func(ctx SpecContext) {
			Expect(executor.Execute(ctx, command.Spec{Name: "true"})).To(Succeed())
		})

		It("fails when the program exits with non-zero", func(ctx SpecContext) {
			Expect(executor.Execute(ctx, command.Spec{Name: "false"})).ToNot(Succeed())
		})

		It("stops the program when ctx is cancelled", func(ctx SpecContext) {
			cancelCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()

			started := time.Now()

			Expect(executor.Execute(cancelCtx, command.Spec{Name: "sleep", Args: []string{"30"}})).ToNot(Succeed())
			Expect(time.Since(started)).To(BeNumerically("<", 5*time.Second))
		}, SpecTimeout(15*time.Second))
	})

	Describe("Spec", func() {
		It("renders as a command line", func() {
			Expect(command.Spec{Name: "terraform", Args: []string{"init"}}.String()).To(Equal("terraform init"))
		})
	})
})
