package clockdiv

import "testing"

func TestDividerPassthrough(t *testing.T) {
	d := New(1)
	for i := 0; i < 10; i++ {
		if !d.Strobe() {
			t.Errorf("cycle %d: divisor 1 should strobe every cycle", i)
		}
	}
}

func TestDividerZeroDivisor(t *testing.T) {
	d := New(0)
	if d.Divisor() != 1 {
		t.Errorf("divisor 0 should clamp to 1, got %d", d.Divisor())
	}
	if !d.Strobe() {
		t.Error("clamped divider should strobe every cycle")
	}
}

func TestDividerDivideByFour(t *testing.T) {
	d := New(4)
	strobes := 0
	for i := 0; i < 40; i++ {
		got := d.Strobe()
		want := (i+1)%4 == 0
		if got != want {
			t.Errorf("cycle %d: strobe=%v, want %v", i, got, want)
		}
		if got {
			strobes++
		}
	}
	if strobes != 10 {
		t.Errorf("expected 10 strobes in 40 cycles, got %d", strobes)
	}
}

func TestDividerReset(t *testing.T) {
	d := New(4)
	d.Strobe()
	d.Strobe()
	d.Reset()

	// Full period again after reset.
	for i := 0; i < 3; i++ {
		if d.Strobe() {
			t.Errorf("cycle %d after reset: unexpected strobe", i)
		}
	}
	if !d.Strobe() {
		t.Error("expected strobe on 4th cycle after reset")
	}
}
