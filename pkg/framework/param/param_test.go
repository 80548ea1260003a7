package param

import (
	"math"
	"strings"
	"testing"
)

func TestParameterValue(t *testing.T) {
	p := New(1, "Fade Time").Range(0, 60).Default(1).Build()

	if math.Abs(p.GetPlainValue()-1) > 1e-9 {
		t.Errorf("default plain value = %f, want 1", p.GetPlainValue())
	}

	p.SetPlainValue(30)
	if math.Abs(p.GetValue()-0.5) > 1e-9 {
		t.Errorf("normalized value = %f, want 0.5", p.GetValue())
	}

	p.SetValue(2)
	if p.GetValue() != 1 {
		t.Errorf("SetValue(2) stored %f, want clamp to 1", p.GetValue())
	}
	p.SetValue(-1)
	if p.GetValue() != 0 {
		t.Errorf("SetValue(-1) stored %f, want clamp to 0", p.GetValue())
	}

	p.SetValue(0.25)
	p.SetValue(math.NaN())
	if p.GetValue() != 0.25 {
		t.Errorf("SetValue(NaN) changed the value to %f", p.GetValue())
	}

	p.Reset()
	if math.Abs(p.GetPlainValue()-1) > 1e-9 {
		t.Errorf("after Reset plain value = %f, want 1", p.GetPlainValue())
	}
}

func TestDefaultBeforeRange(t *testing.T) {
	p := New(1, "Time").Default(30).Range(0, 60).Build()
	if math.Abs(p.GetValue()-0.5) > 1e-9 {
		t.Errorf("normalized default = %f, want 0.5", p.GetValue())
	}
}

func TestToggleParameter(t *testing.T) {
	p := ToggleParameter(2, "Is Fading", false).Build()

	if p.IsOn() {
		t.Fatal("toggle should default to off")
	}
	p.SetOn(true)
	if !p.IsOn() || p.GetValue() != 1 {
		t.Errorf("SetOn(true): value = %f", p.GetValue())
	}
	if got := p.FormatValue(p.GetValue()); got != "On" {
		t.Errorf("FormatValue = %q, want On", got)
	}

	// Steps snap intermediate values.
	p.SetValue(0.4)
	if p.GetValue() != 0 {
		t.Errorf("SetValue(0.4) on a toggle stored %f, want 0", p.GetValue())
	}

	norm, err := p.ParseValue("on")
	if err != nil || norm != 1 {
		t.Errorf("ParseValue(on) = %f, %v", norm, err)
	}
	if _, err := p.ParseValue("maybe"); err == nil {
		t.Error("ParseValue(maybe) should fail")
	}

	if on := p.Toggle(); !on || !p.IsOn() {
		t.Error("Toggle from off should switch on")
	}
	if on := p.Toggle(); on || p.IsOn() {
		t.Error("Toggle from on should switch off")
	}

	if !ToggleParameter(3, "On", true).Build().IsOn() {
		t.Error("ToggleParameter(on=true) should default to on")
	}
}

func TestLinearGainParameter(t *testing.T) {
	p := LinearGainParameter(0, "Low Gain", 0.5).Build()

	if got := p.FormatValue(1); got != "1.00 (0.0 dB)" {
		t.Errorf("FormatValue(1) = %q", got)
	}
	if got := p.FormatValue(0); !strings.Contains(got, "∞") {
		t.Errorf("FormatValue(0) = %q, want -∞", got)
	}

	tests := []struct {
		input string
		want  float64
	}{
		{"0.5", 0.5},
		{"0 dB", 1},
		{"-6.02 dB", 0.5},
		{"-inf dB", 0},
		{"0.25 (-12.0 dB)", 0.25},
	}
	for _, tt := range tests {
		got, err := p.ParseValue(tt.input)
		if err != nil {
			t.Errorf("ParseValue(%q) error: %v", tt.input, err)
			continue
		}
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("ParseValue(%q) = %f, want %f", tt.input, got, tt.want)
		}
	}
}

func TestFadeTimeParameter(t *testing.T) {
	p := FadeTimeParameter(3, "Fade Down Time", 60, 1).Build()

	if got := p.FormatValue(p.GetValue()); got != "1.00 s" {
		t.Errorf("FormatValue = %q, want 1.00 s", got)
	}
	if got := p.FormatValue(p.Normalize(0.25)); got != "250 ms" {
		t.Errorf("FormatValue(0.25s) = %q, want 250 ms", got)
	}

	for input, want := range map[string]float64{"2": 2, "2.5 s": 2.5, "500 ms": 0.5} {
		norm, err := p.ParseValue(input)
		if err != nil {
			t.Errorf("ParseValue(%q) error: %v", input, err)
			continue
		}
		if got := p.Denormalize(norm); math.Abs(got-want) > 1e-9 {
			t.Errorf("ParseValue(%q) = %f s, want %f", input, got, want)
		}
	}
}

func TestGainMeterIsReadOnly(t *testing.T) {
	p := GainMeter(5, "Current Gain").Build()
	if p.Flags&IsReadOnly == 0 || p.Flags&CanAutomate != 0 {
		t.Errorf("meter flags = %b, want read-only and not automatable", p.Flags)
	}
	if p.GetValue() != 1 {
		t.Errorf("meter default = %f, want 1", p.GetValue())
	}
}

func TestPercentFormatter(t *testing.T) {
	if got := PercentFormatter(0.42); got != "42%" {
		t.Errorf("PercentFormatter(0.42) = %q", got)
	}
	v, err := PercentParser(" 42 %")
	if err != nil || math.Abs(v-0.42) > 1e-9 {
		t.Errorf("PercentParser = %f, %v", v, err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	low := LinearGainParameter(0, "Low Gain", 0).Build()
	high := LinearGainParameter(1, "High Gain", 1).Build()

	if err := r.Add(low, high); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Add(LinearGainParameter(1, "Duplicate", 0).Build()); err == nil {
		t.Error("Add accepted a duplicate id")
	}

	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
	if r.Get(1) != high {
		t.Error("Get(1) did not return the high gain parameter")
	}
	if r.GetByIndex(0) != low || r.GetByIndex(2) != nil || r.GetByIndex(-1) != nil {
		t.Error("GetByIndex returned the wrong parameter")
	}

	all := r.All()
	if len(all) != 2 || all[0] != low || all[1] != high {
		t.Errorf("All() = %v, want registration order", all)
	}

	low.SetValue(0.3)
	high.SetValue(0.6)
	r.ResetAll()
	if low.GetValue() != 0 || high.GetValue() != 1 {
		t.Errorf("ResetAll left values %f, %f", low.GetValue(), high.GetValue())
	}
}
