package fade

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
)

func newEngine(t testing.TB, sampleRate float64) (*Engine, *Params) {
	t.Helper()
	params := NewParams()
	engine := NewEngine(params)
	if err := engine.Prepare(sampleRate); err != nil {
		t.Fatalf("Prepare(%v) failed: %v", sampleRate, err)
	}
	return engine, params
}

// run feeds total samples of a unity signal through the engine in blocks of
// blockSize and returns the applied gain curve.
func run(e *Engine, total, blockSize int) []float32 {
	curve := make([]float32, 0, total)
	buf := make([]float32, blockSize)
	for total > 0 {
		n := min(blockSize, total)
		for i := range buf[:n] {
			buf[i] = 1
		}
		e.ProcessBlock([][]float32{buf[:n]}, n)
		curve = append(curve, buf[:n]...)
		total -= n
	}
	return curve
}

func checkFinite(t *testing.T, curve []float32) {
	t.Helper()
	for i, v := range curve {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("sample %d is not finite: %v", i, v)
		}
	}
}

func TestDefaults(t *testing.T) {
	params := NewParams()
	engine := NewEngine(params)

	if params.Gain() != DefaultGainHigh {
		t.Errorf("default gain = %f, want %f", params.Gain(), DefaultGainHigh)
	}
	if params.GainLow() != DefaultGainLow || params.GainHigh() != DefaultGainHigh {
		t.Errorf("default range = [%f, %f], want [%f, %f]",
			params.GainLow(), params.GainHigh(), DefaultGainLow, DefaultGainHigh)
	}
	if params.Direction() != Up {
		t.Errorf("default direction = %v, want up", params.Direction())
	}
	if engine.Remaining() != 0 || engine.Fading() {
		t.Errorf("new engine should be settled, remaining = %d", engine.Remaining())
	}
	if engine.SampleRate() != 0 {
		t.Errorf("sample rate before Prepare = %f, want 0", engine.SampleRate())
	}
}

func TestPrepare(t *testing.T) {
	engine, _ := newEngine(t, 48000)

	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		err := engine.Prepare(sr)
		if !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("Prepare(%v) error = %v, want ErrInvalidSampleRate", sr, err)
		}
		if engine.SampleRate() != 48000 {
			t.Errorf("Prepare(%v) changed sample rate to %f", sr, engine.SampleRate())
		}
	}
}

func TestTriggerSetsRemaining(t *testing.T) {
	tests := []struct {
		name       string
		seconds    float64
		sampleRate float64
		want       int64
	}{
		{"one second at 48k", 1.0, 48000, 48000},
		{"half second at 44.1k", 0.5, 44100, 22050},
		{"rounds down", 0.00001, 48000, 0},
		{"rounds up", 0.0000105, 48000, 1},
		{"zero", 0, 96000, 0},
		{"capped", 1e9, 192000, MaxFadeSamples},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newEngine(t, 48000)
			if !engine.TriggerAt(Down, tt.seconds, tt.sampleRate) {
				t.Fatalf("TriggerAt rejected a valid request")
			}
			if got := engine.Remaining(); got != tt.want {
				t.Errorf("remaining = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTriggerRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		dir        Direction
		seconds    float64
		sampleRate float64
	}{
		{"negative duration", Down, -1, 48000},
		{"NaN duration", Down, math.NaN(), 48000},
		{"infinite duration", Down, math.Inf(1), 48000},
		{"zero sample rate", Down, 1, 0},
		{"NaN sample rate", Down, 1, math.NaN()},
		{"unknown direction", Direction(7), 1, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, params := newEngine(t, 48000)
			if engine.TriggerAt(tt.dir, tt.seconds, tt.sampleRate) {
				t.Errorf("TriggerAt accepted an invalid request")
			}
			if engine.Remaining() != 0 {
				t.Errorf("remaining = %d, want 0", engine.Remaining())
			}
			if params.Direction() != Up {
				t.Errorf("direction changed to %v", params.Direction())
			}
		})
	}
}

func TestTriggerBeforePrepare(t *testing.T) {
	params := NewParams()
	engine := NewEngine(params)

	if engine.Trigger(Down, 1) {
		t.Fatal("Trigger accepted a fade before Prepare")
	}

	curve := run(engine, 64, 64)
	for i, v := range curve {
		if v != 1 {
			t.Fatalf("sample %d = %f, want gain held at 1", i, v)
		}
	}
}

func TestToggle(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Toggle, 0)
	if params.Direction() != Down {
		t.Fatalf("first toggle: direction = %v, want down", params.Direction())
	}
	engine.Trigger(Toggle, 0)
	if params.Direction() != Up {
		t.Fatalf("second toggle: direction = %v, want up", params.Direction())
	}
}

func TestRequest(t *testing.T) {
	engine, params := newEngine(t, 44100)

	if !engine.Request(Request{Seconds: 2, Direction: Down}) {
		t.Fatal("Request rejected")
	}
	if engine.Remaining() != 88200 {
		t.Errorf("remaining = %d, want 88200", engine.Remaining())
	}
	if params.Direction() != Down {
		t.Errorf("direction = %v, want down", params.Direction())
	}
}

func TestScenarioFadeDownOneSecond(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Down, 1.0)
	if engine.Remaining() != 48000 {
		t.Fatalf("remaining = %d, want 48000", engine.Remaining())
	}

	first := run(engine, 512, 512)
	want := float32(1.0 - 512.0/48000.0)
	if math.Abs(float64(params.Gain()-want)) > 1e-6 {
		t.Errorf("gain after one block = %f, want %f", params.Gain(), want)
	}
	if first[0] != 1 {
		t.Errorf("first ramp sample = %f, want 1", first[0])
	}
	if math.Abs(float64(first[511])-(1.0-511.0/48000.0)) > 1e-6 {
		t.Errorf("last ramp sample = %f, want %f", first[511], 1.0-511.0/48000.0)
	}
	if engine.Remaining() != 48000-512 {
		t.Errorf("remaining = %d, want %d", engine.Remaining(), 48000-512)
	}

	run(engine, 48000-512, 512)
	if params.Gain() != 0 {
		t.Errorf("gain after full fade = %g, want exactly 0", params.Gain())
	}
	if engine.Fading() {
		t.Errorf("engine still fading with %d samples left", engine.Remaining())
	}
}

func TestScenarioZeroDurationFade(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Down, 0)
	curve := run(engine, 512, 512)

	for i, v := range curve {
		if v != 0 {
			t.Fatalf("sample %d = %f, want 0 (instant step)", i, v)
		}
	}
	if params.Gain() != 0 {
		t.Errorf("gain = %f, want 0", params.Gain())
	}
}

func TestFadeLandsExactlyOnBound(t *testing.T) {
	durations := []float64{0, 0.001, 0.0107, 0.25, 1, 2.5}
	rates := []float64{44100, 48000, 96000}
	ranges := [][2]float32{{0, 1}, {0.1, 0.9}, {0.25, 0.3}}

	for _, sr := range rates {
		for _, d := range durations {
			for _, r := range ranges {
				engine, params := newEngine(t, sr)
				params.SetGainRange(r[0], r[1])
				samples := max(int(math.Round(d*sr)), 1)

				engine.Trigger(Down, d)
				run(engine, samples, 256)
				if params.Gain() != r[0] {
					t.Errorf("down sr=%v d=%v range=%v: gain = %.9g, want %.9g", sr, d, r, params.Gain(), r[0])
				}

				engine.Trigger(Up, d)
				run(engine, samples, 256)
				if params.Gain() != r[1] {
					t.Errorf("up sr=%v d=%v range=%v: gain = %.9g, want %.9g", sr, d, r, params.Gain(), r[1])
				}
			}
		}
	}
}

func TestSplitInvariance(t *testing.T) {
	const (
		sampleRate = 48000
		partial    = 30000
	)

	reference, refParams := newEngine(t, sampleRate)
	reference.Trigger(Down, 1)
	refCurve := run(reference, partial, partial)
	refGain := refParams.Gain()

	for _, block := range []int{16, 64, 333, 512, 4096} {
		engine, params := newEngine(t, sampleRate)
		engine.Trigger(Down, 1)
		curve := run(engine, partial, block)

		if math.Abs(float64(params.Gain()-refGain)) > 2e-4 {
			t.Errorf("block %d: gain = %f, single block gives %f", block, params.Gain(), refGain)
		}
		for i := range curve {
			if math.Abs(float64(curve[i]-refCurve[i])) > 2e-4 {
				t.Errorf("block %d: sample %d = %f, single block gives %f", block, i, curve[i], refCurve[i])
				break
			}
		}

		run(engine, sampleRate-partial, block)
		if params.Gain() != 0 {
			t.Errorf("block %d: final gain = %g, want exactly 0", block, params.Gain())
		}
	}
}

func TestRetriggerDownThenUp(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Down, 1)
	run(engine, 10000, 512)
	before := params.Gain()

	engine.Trigger(Up, 0.5)
	if engine.Remaining() != 24000 {
		t.Fatalf("remaining after retrigger = %d, want 24000", engine.Remaining())
	}

	curve := run(engine, 512, 512)
	if curve[0] != before {
		t.Errorf("retriggered ramp starts at %f, want current gain %f", curve[0], before)
	}
	want := before + (1-before)*512/24000
	if math.Abs(float64(params.Gain()-want)) > 1e-6 {
		t.Errorf("gain after retrigger block = %f, want %f", params.Gain(), want)
	}

	checkFinite(t, run(engine, 24000-512, 512))
	if params.Gain() != 1 {
		t.Errorf("gain = %g, want exactly 1", params.Gain())
	}
	if engine.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", engine.Remaining())
	}
}

func TestImmediateRetriggerNeverGoesNegative(t *testing.T) {
	engine, params := newEngine(t, 48000)

	for i := 0; i < 50; i++ {
		engine.Trigger(Down, 0.01)
		engine.Trigger(Up, 0.003)
		checkFinite(t, run(engine, 100, 37))
		if engine.Remaining() < 0 {
			t.Fatalf("iteration %d: remaining = %d", i, engine.Remaining())
		}
		g := params.Gain()
		if g < 0 || g > 1 {
			t.Fatalf("iteration %d: gain %f left the range", i, g)
		}
	}
}

func TestEqualBounds(t *testing.T) {
	engine, params := newEngine(t, 48000)
	params.SetGainRange(0.5, 0.5)

	engine.Trigger(Down, 1)
	curve := run(engine, 2048, 256)

	for i, v := range curve {
		if v != 0.5 {
			t.Fatalf("sample %d = %f, want constant 0.5", i, v)
		}
	}
	if params.Gain() != 0.5 {
		t.Errorf("gain = %f, want 0.5", params.Gain())
	}
	if engine.Fading() {
		t.Errorf("engine still fading with equal bounds")
	}
}

func TestInvertedBounds(t *testing.T) {
	engine, params := newEngine(t, 48000)
	params.SetGainRange(1, 0.2)

	engine.Trigger(Down, 0.01)
	curve := run(engine, 480, 64)
	checkFinite(t, curve)

	if params.Gain() != 0.2 {
		t.Errorf("gain = %f, want the smaller bound 0.2", params.Gain())
	}
}

func TestBoundMovedPastGainMidFade(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Down, 1)
	run(engine, 24000, 512)
	half := params.Gain()

	// Low bound now sits above the current gain.
	params.SetGainRange(0.8, 1)
	curve := run(engine, 24000, 512)
	checkFinite(t, curve)

	for i, v := range curve {
		if v < half-1e-6 || v > 0.8+1e-6 {
			t.Fatalf("sample %d = %f, outside [%f, 0.8]", i, v, half)
		}
	}
	if params.Gain() != 0.8 {
		t.Errorf("gain = %g, want exactly 0.8", params.Gain())
	}
}

func TestBoundMovedAheadMidFade(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Down, 1)
	run(engine, 12000, 500)
	params.SetGainRange(0.5, 1)
	curve := run(engine, 36000, 500)

	for i := 1; i < len(curve); i++ {
		if curve[i] > curve[i-1]+1e-6 {
			t.Fatalf("gain rose at sample %d during a downward fade: %f -> %f", i, curve[i-1], curve[i])
		}
	}
	if params.Gain() != 0.5 {
		t.Errorf("gain = %g, want exactly 0.5", params.Gain())
	}
}

func TestSettledGainFollowsBound(t *testing.T) {
	engine, params := newEngine(t, 48000)
	params.SetGainRange(0, 0.7)

	run(engine, 128, 128)
	if params.Gain() != 0.7 {
		t.Errorf("settled gain = %f, want 0.7", params.Gain())
	}
}

func TestNaNBoundHoldsLastGain(t *testing.T) {
	engine, params := newEngine(t, 48000)

	engine.Trigger(Down, 1)
	run(engine, 24000, 512)
	held := params.Gain()
	remaining := engine.Remaining()

	params.SetGainRange(float32(math.NaN()), 1)
	curve := run(engine, 1024, 512)
	for i, v := range curve {
		if v != held {
			t.Fatalf("sample %d = %f, want held gain %f", i, v, held)
		}
	}
	if engine.Remaining() != remaining {
		t.Errorf("remaining changed from %d to %d while bounds were invalid", remaining, engine.Remaining())
	}

	params.SetGainRange(0, 1)
	run(engine, int(remaining), 512)
	if params.Gain() != 0 {
		t.Errorf("gain after recovery = %g, want 0", params.Gain())
	}
}

func TestNaNGainIsRepaired(t *testing.T) {
	engine, params := newEngine(t, 48000)
	run(engine, 64, 64)

	params.SetGain(float32(math.NaN()))
	curve := run(engine, 64, 64)
	checkFinite(t, curve)

	if params.Gain() != 1 {
		t.Errorf("gain = %f, want last valid gain 1", params.Gain())
	}
}

func TestProcessBlockRespectsLengths(t *testing.T) {
	engine, _ := newEngine(t, 48000)
	engine.Trigger(Down, 0)

	left := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	right := []float32{1, 1, 1, 1, 1, 1}
	engine.ProcessBlock([][]float32{left, right}, 8)

	for i, v := range left {
		want := float32(0)
		if i >= len(right) {
			want = 1
		}
		if v != want {
			t.Errorf("left[%d] = %f, want %f", i, v, want)
		}
	}

	buf := []float32{1, 1, 1, 1}
	engine.ProcessBlock([][]float32{buf}, 2)
	if buf[2] != 1 || buf[3] != 1 {
		t.Errorf("samples past numSamples were modified: %v", buf)
	}

	engine.ProcessBlock([][]float32{buf}, 0)
	engine.ProcessBlock([][]float32{buf}, -5)
}

func TestProcessBlockWithoutChannelsAdvances(t *testing.T) {
	engine, params := newEngine(t, 48000)
	engine.Trigger(Down, 0.01)

	engine.ProcessBlock(nil, 240)
	if engine.Remaining() != 240 {
		t.Errorf("remaining = %d, want 240", engine.Remaining())
	}
	engine.ProcessBlock(nil, 240)
	if params.Gain() != 0 {
		t.Errorf("gain = %f, want 0", params.Gain())
	}
}

func TestReset(t *testing.T) {
	engine, params := newEngine(t, 48000)
	engine.Trigger(Down, 1)
	run(engine, 512, 512)

	engine.Reset()
	if engine.Fading() {
		t.Fatal("engine still fading after Reset")
	}
	run(engine, 1, 1)
	if params.Gain() != 0 {
		t.Errorf("gain after Reset = %f, want bound 0", params.Gain())
	}
}

func TestConcurrentTriggerAndProcess(t *testing.T) {
	engine, params := newEngine(t, 48000)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		rng := rand.New(rand.NewSource(1))
		dirs := []Direction{Down, Up, Toggle}
		for {
			select {
			case <-stop:
				return
			default:
			}
			engine.Trigger(dirs[rng.Intn(len(dirs))], rng.Float64()*0.05)
			low := rng.Float32() * 0.5
			params.SetGainRange(low, low+rng.Float32()*0.5)
		}
	}()

	buf := make([]float32, 128)
	for block := 0; block < 2000; block++ {
		for i := range buf {
			buf[i] = 1
		}
		engine.ProcessBlock([][]float32{buf}, len(buf))
		for i, v := range buf {
			if math.IsNaN(float64(v)) || v < 0 || v > 1 {
				close(stop)
				wg.Wait()
				t.Fatalf("block %d sample %d = %f", block, i, v)
			}
		}
		if engine.Remaining() < 0 {
			close(stop)
			wg.Wait()
			t.Fatalf("block %d: remaining = %d", block, engine.Remaining())
		}
	}
	close(stop)
	wg.Wait()
}

func TestProcessBlockZeroAllocations(t *testing.T) {
	engine, _ := newEngine(t, 48000)
	left := make([]float32, 512)
	right := make([]float32, 512)
	channels := [][]float32{left, right}

	engine.Trigger(Down, 10)
	allocs := testing.AllocsPerRun(100, func() {
		engine.ProcessBlock(channels, 512)
	})
	if allocs != 0 {
		t.Errorf("ProcessBlock allocated %.0f times per block", allocs)
	}
}

func BenchmarkProcessBlock(b *testing.B) {
	engine, _ := newEngine(b, 48000)
	channels := [][]float32{make([]float32, 512), make([]float32, 512)}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !engine.Fading() {
			engine.Trigger(Toggle, 1)
		}
		engine.ProcessBlock(channels, 512)
	}
}
