package state_test

import (
	"errors"
	"primor/bizerror"
	"primor/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
		pending      = state.State{Name: "pending", Category: state.InProcess}
		confirmed    = state.State{Name: "confirmed", Category: state.Done}
		declined     = state.State{Name: "declined", Category: state.Done}
	)

	BeforeEach(func() {
		//           pending   confirmed     declined
		// pending     -       V (confirm)   V (decline)
		// confirmed   X       -             X
		// declined    X       X             -
		stateMachine = state.NewStateMachine(
			[]state.State{pending, confirmed, declined},
			[]state.Transition{
				{Name: "confirm", From: pending, To: confirmed},
				{Name: "decline", From: pending, To: declined},
			})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by source and target state", func() {
			Expect(stateMachine.AvailableTransitions("pending", "")).To(Equal([]state.Transition{
				{Name: "confirm", From: pending, To: confirmed},
				{Name: "decline", From: pending, To: declined},
			}))
			Expect(stateMachine.AvailableTransitions("", "declined")).To(Equal([]state.Transition{
				{Name: "decline", From: pending, To: declined},
			}))
			Expect(stateMachine.AvailableTransitions("confirmed", "")).To(BeEmpty())
			Expect(stateMachine.AvailableTransitions("unknown", "")).To(BeEmpty())
		})
	})

	Describe("Fire", func() {
		It("should return target state of a valid transition", func() {
			to, err := stateMachine.Fire("pending", "confirm")
			Expect(err).To(BeNil())
			Expect(to).To(Equal(confirmed))
		})

		It("should reject transitions out of terminal states", func() {
			_, err := stateMachine.Fire("confirmed", "decline")
			Expect(errors.Is(err, bizerror.ErrInvalidState)).To(BeTrue())
			_, err = stateMachine.Fire("pending", "reopen")
			Expect(errors.Is(err, bizerror.ErrInvalidState)).To(BeTrue())
		})
	})

	Describe("IsTerminal", func() {
		It("should report done states", func() {
			Expect(stateMachine.IsTerminal("pending")).To(BeFalse())
			Expect(stateMachine.IsTerminal("confirmed")).To(BeTrue())
			Expect(stateMachine.IsTerminal("declined")).To(BeTrue())
			Expect(stateMachine.IsTerminal("unknown")).To(BeFalse())
		})
	})
})
