package param

// Preconfigured builders for the parameter kinds a fader needs.

// LinearGainParameter creates a 0-1 linear gain parameter.
func LinearGainParameter(id uint32, name string, defaultGain float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultGain).
		Formatter(LinearGainFormatter, LinearGainParser)
}

// FadeTimeParameter creates a duration parameter in seconds.
func FadeTimeParameter(id uint32, name string, maxSeconds, defaultSeconds float64) *Builder {
	return New(id, name).
		Range(0, maxSeconds).
		Default(defaultSeconds).
		Unit("s").
		Formatter(SecondsFormatter, SecondsParser)
}

// ToggleParameter creates an on/off parameter.
func ToggleParameter(id uint32, name string, on bool) *Builder {
	b := New(id, name).Toggle()
	if on {
		b.Default(1)
	}
	return b
}

// GainMeter creates a read-only linear gain display.
func GainMeter(id uint32, name string) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(1).
		Formatter(LinearGainFormatter, nil).
		ReadOnly()
}
