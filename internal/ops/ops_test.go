package ops

import "testing"

func TestLookupOpcodeRoundTrip(t *testing.T) {
	for op, name := range opcodeNames {
		got, ok := LookupOpcode(name)
		if !ok || got != op {
			t.Errorf("LookupOpcode(%q) = %v, %v; want %v, true", name, got, ok, op)
		}
	}
	if _, ok := LookupOpcode("BOGUS"); ok {
		t.Error("LookupOpcode(BOGUS) should fail")
	}
}

func TestLookupRegisterRoundTrip(t *testing.T) {
	for reg, name := range registerNames {
		got, ok := LookupRegister(name)
		if !ok || got != reg {
			t.Errorf("LookupRegister(%q) = %v, %v; want %v, true", name, got, ok, reg)
		}
	}
}

func TestIsJumpWithLabel(t *testing.T) {
	jumps := []Opcode{Jez, Jgz, Jlz, Jmp, Jnz}
	for _, op := range jumps {
		if !op.IsJumpWithLabel() {
			t.Errorf("%v.IsJumpWithLabel() = false, want true", op)
		}
	}
	notJumps := []Opcode{Jro, Add, Mov, Nop, Hcf}
	for _, op := range notJumps {
		if op.IsJumpWithLabel() {
			t.Errorf("%v.IsJumpWithLabel() = true, want false", op)
		}
	}
}

func TestRegisterOpposite(t *testing.T) {
	pairs := map[Register]Register{
		RegUp: RegDown, RegDown: RegUp, RegLeft: RegRight, RegRight: RegLeft,
	}
	for r, want := range pairs {
		if got := r.Opposite(); got != want {
			t.Errorf("%v.Opposite() = %v, want %v", r, got, want)
		}
	}
	if RegAcc.Opposite() != RegInvalid {
		t.Error("ACC has no opposite direction")
	}
}

func TestOperationIsEmpty(t *testing.T) {
	if !(Operation{}).IsEmpty() {
		t.Error("zero-value Operation should be empty")
	}
	if (Operation{Opcode: Nop}).IsEmpty() {
		t.Error("NOP is a real instruction, not empty")
	}
}
