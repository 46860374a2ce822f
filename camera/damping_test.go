package camera

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSmoothZeroDeltaKeepsPoint(t *testing.T) {
	current := r3.Vec{X: 1, Y: 2, Z: 3}
	goal := r3.Vec{X: 10}

	for _, mode := range []DampingMode{DampingLinear, DampingExponential} {
		if got := Smooth(mode, current, goal, 0, 5); got != current {
			t.Errorf("%s: Smooth with dt=0 moved point to %v", mode, got)
		}
	}
}

func TestSmoothLinearMatchesLerp(t *testing.T) {
	current := r3.Vec{}
	goal := r3.Vec{X: 10, Y: -4}

	got := Smooth(DampingLinear, current, goal, 0.1, 5)
	want := r3.Vec{X: 5, Y: -2}
	if !vecNear(got, want, eps) {
		t.Errorf("Smooth = %v, want %v", got, want)
	}
}

func TestSmoothLinearOvershoots(t *testing.T) {
	// dt*factor > 1 carries the point past the goal.
	got := Smooth(DampingLinear, r3.Vec{}, r3.Vec{X: 10}, 0.5, 4)
	if got.X <= 10 {
		t.Errorf("expected linear overshoot, got %v", got)
	}
}

func TestSmoothExponentialNeverOvershoots(t *testing.T) {
	tests := []struct {
		name   string
		dt     float64
		factor float64
	}{
		{"small step", 1.0 / 60, 5},
		{"large step", 0.5, 4},
		{"huge step", 10, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Smooth(DampingExponential, r3.Vec{}, r3.Vec{X: 10}, tc.dt, tc.factor)
			if got.X < 0 || got.X > 10 {
				t.Errorf("Smooth = %v, want within [0, 10]", got)
			}
		})
	}
}

func TestSmoothExponentialFrameRateIndependent(t *testing.T) {
	goal := r3.Vec{X: 10}

	one := Smooth(DampingExponential, r3.Vec{}, goal, 0.1, 3)

	two := Smooth(DampingExponential, r3.Vec{}, goal, 0.05, 3)
	two = Smooth(DampingExponential, two, goal, 0.05, 3)

	if !vecNear(one, two, 1e-9) {
		t.Errorf("one step %v != two half steps %v", one, two)
	}
}

func TestParseDampingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DampingMode
		wantErr bool
	}{
		{"", DampingLinear, false},
		{"linear", DampingLinear, false},
		{"exponential", DampingExponential, false},
		{"cubic", "", true},
	}

	for _, tc := range tests {
		got, err := ParseDampingMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDampingMode(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDampingMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
