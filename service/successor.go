package service

import "math/rand/v2"

// SuccessorPicker chooses the next team owner when the current one leaves.
// members is never empty.
type SuccessorPicker interface {
	PickSuccessor(members []uint) uint
}

// SuccessorFunc adapts a function to SuccessorPicker.
type SuccessorFunc func(members []uint) uint

func (f SuccessorFunc) PickSuccessor(members []uint) uint { return f(members) }

// RandomSuccessor picks uniformly among the remaining members.
type RandomSuccessor struct{}

func (RandomSuccessor) PickSuccessor(members []uint) uint {
	return members[rand.IntN(len(members))]
}

// FirstSuccessor picks the longest-standing remaining member.
var FirstSuccessor = SuccessorFunc(func(members []uint) uint { return members[0] })
