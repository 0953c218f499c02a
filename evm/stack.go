package evm

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/corevm/go-evm/config"
)

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is an object for basic stack operations. Items popped from the stack
// are expected not to be changed and modified. Every mutation is checked:
// exceeding the stack limit or popping an empty stack yields an error, never
// a panic.
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// Data returns the underlying uint256.Int array.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

func (st *Stack) push(d *uint256.Int) error {
	if uint64(len(st.data)) >= config.StackLimit {
		return ErrStackOverflow{stackLen: len(st.data), limit: int(config.StackLimit)}
	}
	st.data = append(st.data, *d)
	return nil
}

func (st *Stack) pop() (uint256.Int, error) {
	if len(st.data) == 0 {
		return uint256.Int{}, ErrStackUnderflow{stackLen: 0, required: 1}
	}
	ret := st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return ret, nil
}

// pop2 removes the two topmost elements. The first return value is the old
// top of the stack.
func (st *Stack) pop2() (uint256.Int, uint256.Int, error) {
	if len(st.data) < 2 {
		return uint256.Int{}, uint256.Int{}, ErrStackUnderflow{stackLen: len(st.data), required: 2}
	}
	a := st.data[len(st.data)-1]
	b := st.data[len(st.data)-2]
	st.data = st.data[:len(st.data)-2]
	return a, b, nil
}

// pop3 removes the three topmost elements, top first.
func (st *Stack) pop3() (uint256.Int, uint256.Int, uint256.Int, error) {
	if len(st.data) < 3 {
		return uint256.Int{}, uint256.Int{}, uint256.Int{}, ErrStackUnderflow{stackLen: len(st.data), required: 3}
	}
	a := st.data[len(st.data)-1]
	b := st.data[len(st.data)-2]
	c := st.data[len(st.data)-3]
	st.data = st.data[:len(st.data)-3]
	return a, b, c, nil
}

// pop4 removes the four topmost elements, top first.
func (st *Stack) pop4() (uint256.Int, uint256.Int, uint256.Int, uint256.Int, error) {
	if len(st.data) < 4 {
		return uint256.Int{}, uint256.Int{}, uint256.Int{}, uint256.Int{}, ErrStackUnderflow{stackLen: len(st.data), required: 4}
	}
	a := st.data[len(st.data)-1]
	b := st.data[len(st.data)-2]
	c := st.data[len(st.data)-3]
	d := st.data[len(st.data)-4]
	st.data = st.data[:len(st.data)-4]
	return a, b, c, d, nil
}

func (st *Stack) len() int {
	return len(st.data)
}

// swap exchanges the top of the stack with the n'th item below it.
func (st *Stack) swap(n int) error {
	if st.len() <= n {
		return ErrStackUnderflow{stackLen: st.len(), required: n + 1}
	}
	st.data[st.len()-n-1], st.data[st.len()-1] = st.data[st.len()-1], st.data[st.len()-n-1]
	return nil
}

// dup duplicates the n'th item on the stack, counting from the top.
func (st *Stack) dup(n int) error {
	if st.len() < n {
		return ErrStackUnderflow{stackLen: st.len(), required: n}
	}
	v := st.data[st.len()-n]
	return st.push(&v)
}

// Back returns the n'th item in stack. It is exported for tracers and tests;
// callers are responsible for the index being in range.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[st.len()-n-1]
}
