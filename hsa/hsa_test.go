package hsa

import (
	"errors"
	"math"
	"testing"

	"github.com/dongran/COVID19-EMD-Analysis/internal/testutil"
)

func TestAnalyticRealPartMatchesInput(t *testing.T) {
	// Real-part recovery is exact regardless of padding.
	for _, n := range []int{128, 525} {
		x := testutil.SineWithPeriod(7, 1, n)

		re, im, err := Analytic(x)
		if err != nil {
			t.Fatalf("Analytic: %v", err)
		}

		if len(re) != n || len(im) != n {
			t.Fatalf("lengths = %d/%d, want %d", len(re), len(im), n)
		}

		testutil.RequireSliceNearlyEqual(t, re, x, 1e-9)
	}
}

func TestAnalyticPureTone(t *testing.T) {
	// Period 8 over 128 samples is periodic in the transform window, so the
	// analytic signal is exact: unit envelope, constant frequency.
	x := testutil.SineWithPeriod(8, 1, 128)

	re, im, err := Analytic(x)
	if err != nil {
		t.Fatalf("Analytic: %v", err)
	}

	amp := Amplitude(re, im)
	for i, a := range amp {
		if math.Abs(a-1) > 1e-9 {
			t.Fatalf("amp[%d] = %v, want 1", i, a)
		}
	}

	freq, err := InstantaneousFrequency(Phase(re, im), 1)
	if err != nil {
		t.Fatalf("InstantaneousFrequency: %v", err)
	}

	for i, f := range freq {
		if math.Abs(f-0.125) > 1e-9 {
			t.Fatalf("freq[%d] = %v, want 0.125", i, f)
		}
	}
}

func TestAnalyticPaddedTone(t *testing.T) {
	// 525 samples pad to 1024; boundary ripple must stay out of the
	// central region.
	x := testutil.SineWithPeriod(7, 1, 525)

	re, im, err := Analytic(x)
	if err != nil {
		t.Fatalf("Analytic: %v", err)
	}

	amp := Amplitude(re, im)
	for i := 175; i < 350; i++ {
		if math.Abs(amp[i]-1) > 0.05 {
			t.Fatalf("amp[%d] = %v, want ~1", i, amp[i])
		}
	}

	freq, err := InstantaneousFrequency(Phase(re, im), 1)
	if err != nil {
		t.Fatalf("InstantaneousFrequency: %v", err)
	}

	want := 1.0 / 7
	for i := 175; i < 350; i++ {
		if math.Abs(freq[i]-want) > 0.01 {
			t.Fatalf("freq[%d] = %v, want ~%v", i, freq[i], want)
		}
	}
}

func TestAnalyticDegenerate(t *testing.T) {
	if _, _, err := Analytic(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("Analytic(nil) error = %v, want ErrEmptySignal", err)
	}

	re, im, err := Analytic([]float64{3})
	if err != nil {
		t.Fatalf("Analytic single sample: %v", err)
	}

	if re[0] != 3 || im[0] != 0 {
		t.Fatalf("single sample analytic = %v+%vi, want 3+0i", re[0], im[0])
	}
}

func TestAmplitude(t *testing.T) {
	amp := Amplitude([]float64{3, 0, -5}, []float64{4, 0, 12})

	want := []float64{5, 0, 13}
	for i := range want {
		if amp[i] != want[i] {
			t.Fatalf("amp[%d] = %v, want %v", i, amp[i], want[i])
		}
	}
}

func TestUnwrapPhase(t *testing.T) {
	// A steadily advancing phase wrapped into (-pi, pi] unwraps back to a
	// straight ramp.
	const step = 0.9 * math.Pi

	n := 20
	wrapped := make([]float64, n)
	want := make([]float64, n)

	for i := range wrapped {
		phi := step * float64(i)
		want[i] = phi
		wrapped[i] = math.Atan2(math.Sin(phi), math.Cos(phi))
	}

	testutil.RequireSliceNearlyEqual(t, UnwrapPhase(wrapped), want, 1e-9)
}

func TestUnwrapPhaseEmpty(t *testing.T) {
	if got := UnwrapPhase(nil); got != nil {
		t.Fatalf("UnwrapPhase(nil) = %v, want nil", got)
	}
}

func TestPhaseContinuity(t *testing.T) {
	x := testutil.SineWithPeriod(8, 1, 128)

	re, im, err := Analytic(x)
	if err != nil {
		t.Fatalf("Analytic: %v", err)
	}

	phase := Phase(re, im)
	step := 2 * math.Pi / 8

	for i := 1; i < len(phase); i++ {
		if math.Abs(phase[i]-phase[i-1]-step) > 1e-9 {
			t.Fatalf("phase step at %d = %v, want %v", i, phase[i]-phase[i-1], step)
		}
	}
}

func TestInstantaneousFrequency(t *testing.T) {
	// Linear phase at 0.1 cycles per day.
	n := 10
	phase := make([]float64, n)

	for i := range phase {
		phase[i] = 2 * math.Pi * 0.1 * float64(i)
	}

	freq, err := InstantaneousFrequency(phase, 1)
	if err != nil {
		t.Fatalf("InstantaneousFrequency: %v", err)
	}

	if len(freq) != n {
		t.Fatalf("len = %d, want %d", len(freq), n)
	}

	for i, f := range freq {
		if math.Abs(f-0.1) > 1e-12 {
			t.Fatalf("freq[%d] = %v, want 0.1", i, f)
		}
	}

	// The final sample repeats the last difference.
	if freq[n-1] != freq[n-2] {
		t.Fatalf("freq end = %v, want repeat of %v", freq[n-1], freq[n-2])
	}
}

func TestInstantaneousFrequencyScalesWithDt(t *testing.T) {
	phase := []float64{0, math.Pi, 2 * math.Pi}

	freq, err := InstantaneousFrequency(phase, 0.5)
	if err != nil {
		t.Fatalf("InstantaneousFrequency: %v", err)
	}

	if math.Abs(freq[0]-1) > 1e-12 {
		t.Fatalf("freq[0] = %v, want 1 for half-cycle per half-day", freq[0])
	}
}

func TestInstantaneousFrequencyValidation(t *testing.T) {
	if _, err := InstantaneousFrequency([]float64{1}, 1); !errors.Is(err, ErrShortSignal) {
		t.Fatalf("short error = %v, want ErrShortSignal", err)
	}

	if _, err := InstantaneousFrequency([]float64{1, 2}, 0); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("dt error = %v, want ErrInvalidInterval", err)
	}

	if _, err := InstantaneousFrequency([]float64{1, 2}, -1); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("dt error = %v, want ErrInvalidInterval", err)
	}
}

func TestSmoothWeightedConstant(t *testing.T) {
	freq := testutil.Constant(0.25, 100)
	amp := testutil.Constant(1, 100)

	got := SmoothWeighted(freq, amp, 30)

	// Averaging a constant changes nothing.
	testutil.RequireSliceNearlyEqual(t, got, freq, 1e-12)
}

func TestSmoothWeightedWindowTooSmall(t *testing.T) {
	freq := []float64{1, 2, 3}
	amp := []float64{1, 1, 1}

	got := SmoothWeighted(freq, amp, 1)

	testutil.RequireSliceNearlyEqual(t, got, freq, 0)

	// And the result is a copy, not an alias.
	got[0] = 99
	if freq[0] != 1 {
		t.Fatal("SmoothWeighted aliased its input")
	}
}

func TestSmoothWeightedAveraging(t *testing.T) {
	freq := []float64{0, 10, 0, 0, 0}
	amp := []float64{1, 1, 1, 1, 1}

	got := SmoothWeighted(freq, amp, 2)

	// window 2 spans one sample each side; interior j=1..3.
	want := []float64{0, 10.0 / 3, 10.0 / 3, 0, 0}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestSmoothWeightedRespectsWeights(t *testing.T) {
	freq := []float64{0, 10, 20}
	amp := []float64{0, 1, 3}

	got := SmoothWeighted(freq, amp, 2)

	// j=1: (0*0 + 10*1 + 20*3) / 4 = 17.5.
	if math.Abs(got[1]-17.5) > 1e-12 {
		t.Fatalf("got[1] = %v, want 17.5", got[1])
	}
}

func TestSmoothWeightedZeroWeights(t *testing.T) {
	freq := []float64{1, 2, 3, 4, 5}
	amp := make([]float64, 5)

	got := SmoothWeighted(freq, amp, 2)

	// All-zero weights leave the track untouched.
	testutil.RequireSliceNearlyEqual(t, got, freq, 0)
}

func TestSmoothWeightedBoundariesUntouched(t *testing.T) {
	freq := []float64{7, 1, 1, 1, 1, 1, 9}
	amp := testutil.Constant(1, 7)

	got := SmoothWeighted(freq, amp, 4)

	// half = 2: indices 0,1 and 5,6 keep raw values.
	for _, i := range []int{0, 1, 5, 6} {
		if got[i] != freq[i] {
			t.Fatalf("boundary sample %d changed: %v -> %v", i, freq[i], got[i])
		}
	}
}

func TestAnalyze(t *testing.T) {
	x := testutil.SineWithPeriod(8, 1, 128)

	track, err := Analyze(x, 1, 30)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(track.Amplitude) != 128 || len(track.Frequency) != 128 || len(track.Raw) != 128 {
		t.Fatal("track length mismatch")
	}

	for i := 40; i < 90; i++ {
		if math.Abs(track.Frequency[i]-0.125) > 1e-6 {
			t.Fatalf("Frequency[%d] = %v, want 0.125", i, track.Frequency[i])
		}
	}
}

func TestAnalyzeNoSmoothing(t *testing.T) {
	x := testutil.SineWithPeriod(8, 1, 64)

	track, err := Analyze(x, 1, 0)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, track.Frequency, track.Raw, 0)
}

func TestAnalyzeShortSignal(t *testing.T) {
	if _, err := Analyze([]float64{1}, 1, 30); !errors.Is(err, ErrShortSignal) {
		t.Fatalf("Analyze error = %v, want ErrShortSignal", err)
	}
}
