package irt

import "testing"

func TestTestInformation(t *testing.T) {
	items := []Parameters{
		{A: 1, B: 0, C: 0.2},
		{A: 1.5, B: 1, C: 0.1},
		{A: 0.7, B: -1, C: 0.25},
	}
	want := 0.0
	for _, p := range items {
		want += ItemInformation(0.5, p)
	}
	if got := TestInformation(0.5, items); !almostEqual(got, want, 1e-12) {
		t.Errorf("TestInformation(0.5) = %f, want %f", got, want)
	}
	if got := TestInformation(0, nil); got != 0 {
		t.Errorf("TestInformation(0, nil) = %f, want 0", got)
	}
}

func TestTestReliability_TooFewItems(t *testing.T) {
	if got := TestReliability(nil); got != 0 {
		t.Errorf("TestReliability(nil) = %f, want 0", got)
	}
	one := []ResponsePattern{{ItemID: "a", Correct: true, Params: DefaultParameters()}}
	if got := TestReliability(one); got != 0 {
		t.Errorf("TestReliability(1 item) = %f, want 0", got)
	}
}

func TestTestReliability_Range(t *testing.T) {
	sets := [][]ResponsePattern{
		symmetricPattern(),
		uniformPattern(5, true, Parameters{A: 1, B: -1, C: 0.2}),
		uniformPattern(8, false, Parameters{A: 2, B: 2, C: 0.3}),
		uniformPattern(2, true, Parameters{A: 0.2, B: 0, C: 0}),
	}
	for i, set := range sets {
		got := TestReliability(set)
		if got < 0 || got > 1 {
			t.Errorf("set %d: TestReliability = %f, want in [0,1]", i, got)
		}
	}
}

func TestTestReliability_LongerTestIsMoreReliable(t *testing.T) {
	short := symmetricPattern()
	var long []ResponsePattern
	for i := 0; i < 4; i++ {
		long = append(long, symmetricPattern()...)
	}

	rs, rl := TestReliability(short), TestReliability(long)
	if rs <= 0 {
		t.Errorf("reliability for 10 informative items = %f, want > 0", rs)
	}
	if rl <= rs {
		t.Errorf("reliability with 40 items (%f) should exceed 10 items (%f)", rl, rs)
	}
}
