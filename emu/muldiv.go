package emu

import "github.com/brvlab/brv32p/insts"

// MulDivUnit models the multiply/divide functional unit. Multiplies resolve
// in the tick they are started. Divides run a restoring division over 33
// ticks, asserting Busy throughout; the issuing stage must hold until the
// one-tick Done pulse.
type MulDivUnit struct {
	busy bool
	done bool

	op        insts.MulDivOp
	ticksLeft int

	// Iteration state, all on magnitudes.
	divisor   uint32
	remainder uint64
	quotient  uint32

	negQuotient  bool // operand signs differ
	negRemainder bool // dividend was negative
	divByZero    bool

	result uint32
}

// NewMulDivUnit creates an idle multiply/divide unit.
func NewMulDivUnit() *MulDivUnit {
	return &MulDivUnit{}
}

// Busy reports whether a divide is in flight.
func (u *MulDivUnit) Busy() bool { return u.busy }

// Done reports whether a divide completed this tick. It holds for one tick.
func (u *MulDivUnit) Done() bool { return u.done }

// Result returns the completed operation's value. Valid while Done holds.
func (u *MulDivUnit) Result() uint32 { return u.result }

// Multiply computes a single-tick multiply result.
func Multiply(op insts.MulDivOp, a, b uint32) uint32 {
	switch op {
	case insts.OpMUL:
		return a * b
	case insts.OpMULH:
		return uint32(int64(int32(a)) * int64(int32(b)) >> 32)
	case insts.OpMULHSU:
		return uint32(int64(int32(a)) * int64(b) >> 32)
	case insts.OpMULHU:
		return uint32(uint64(a) * uint64(b) >> 32)
	}
	return 0
}

// Start begins a divide or remainder operation. The unit becomes busy
// immediately and stays busy for 33 ticks.
func (u *MulDivUnit) Start(op insts.MulDivOp, dividend, divisor uint32) {
	u.op = op
	u.busy = true
	u.done = false
	u.ticksLeft = 33
	u.divByZero = divisor == 0

	signed := op == insts.OpDIV || op == insts.OpREM
	if signed {
		u.negQuotient = int32(dividend)<0 != (int32(divisor) < 0)
		u.negRemainder = int32(dividend) < 0
		dividend = absU32(dividend)
		divisor = absU32(divisor)
	} else {
		u.negQuotient = false
		u.negRemainder = false
	}

	u.divisor = divisor
	u.remainder = 0
	u.quotient = dividend
}

// Cancel abandons an in-flight divide. Used when the issuing instruction is
// squashed before the result could be consumed.
func (u *MulDivUnit) Cancel() {
	u.busy = false
	u.done = false
}

// Tick advances the divider by one tick. The first 32 ticks each perform one
// restoring-division step; the 33rd applies sign correction and raises a
// one-tick Done.
func (u *MulDivUnit) Tick() {
	u.done = false
	if !u.busy {
		return
	}

	u.ticksLeft--
	if u.ticksLeft >= 1 && u.ticksLeft <= 32 {
		u.step()
	}
	if u.ticksLeft > 0 {
		return
	}

	quotient := u.quotient
	remainder := uint32(u.remainder)
	if u.negQuotient && !u.divByZero {
		quotient = -quotient
	}
	if u.negRemainder {
		remainder = -remainder
	}

	switch u.op {
	case insts.OpDIV, insts.OpDIVU:
		u.result = quotient
	default:
		u.result = remainder
	}
	u.busy = false
	u.done = true
}

func (u *MulDivUnit) step() {
	u.remainder = u.remainder<<1 | uint64(u.quotient>>31)
	u.quotient <<= 1
	if u.remainder >= uint64(u.divisor) {
		u.remainder -= uint64(u.divisor)
		u.quotient |= 1
	}
}

func absU32(v uint32) uint32 {
	if int32(v) < 0 {
		return -v
	}
	return v
}
