package debug

import (
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// AudioAnalyzer provides utilities for analyzing audio buffers.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
	ZeroCrossings  int
	// MaxJump is the largest difference between adjacent samples.
	MaxJump    float32
	MaxJumpIdx int
}

// Analyze computes level statistics for a buffer. NaN samples are counted
// and otherwise skipped.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{}

	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	var last float32
	haveLast := false

	for i, sample := range buffer {
		if math.IsNaN(float64(sample)) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		abs := float32(math.Abs(float64(sample)))
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += float64(sample)
		sumSquares += float64(sample) * float64(sample)

		if haveLast {
			if (last < 0) != (sample < 0) {
				result.ZeroCrossings++
			}
			if jump := float32(math.Abs(float64(sample - last))); jump > result.MaxJump {
				result.MaxJump = jump
				result.MaxJumpIdx = i
			}
		}
		last, haveLast = sample, true
	}

	result.RMS = float32(math.Sqrt(sumSquares / float64(len(buffer))))
	result.DC = float32(sum / float64(len(buffer)))
	result.Silent = result.RMS < a.silenceThreshold

	return result
}

// CompareBuffers compares two audio buffers and reports differences.
func CompareBuffers(a, b []float32, tolerance float32) string {
	if len(a) != len(b) {
		return fmt.Sprintf("Buffer length mismatch: %d vs %d", len(a), len(b))
	}

	var maxDiff float32
	var maxDiffIndex int
	var totalDiff float64
	var diffCount int

	for i := range a {
		diff := float32(math.Abs(float64(a[i] - b[i])))
		if diff > tolerance {
			diffCount++
			totalDiff += float64(diff)
			if diff > maxDiff {
				maxDiff = diff
				maxDiffIndex = i
			}
		}
	}

	if diffCount == 0 {
		return "Buffers are identical within tolerance"
	}

	return fmt.Sprintf("Buffer differences:\n"+
		"  Samples different: %d / %d (%.1f%%)\n"+
		"  Max difference: %.6f at sample %d\n"+
		"  Average difference: %.6f\n"+
		"  Tolerance: %.6f",
		diffCount, len(a), float64(diffCount)/float64(len(a))*100,
		maxDiff, maxDiffIndex,
		totalDiff/float64(diffCount),
		tolerance)
}

// CheckBuffer performs basic sanity checks on an audio buffer.
func CheckBuffer(buffer []float32, name string) []string {
	var issues []string

	analyzer := NewAudioAnalyzer()
	result := analyzer.Analyze(buffer)

	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: Contains %d NaN values", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: Clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(analyzer.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: Peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}

// ErrFrameSize is returned when a click scan frame is not a power of two
// of at least 64 samples.
var ErrFrameSize = errors.New("frame size must be a power of two >= 64")

// ClickReport summarizes a click scan. Ratios are the share of each frame's
// spectral energy that lies above the cutoff frequency.
type ClickReport struct {
	FrameSize  int
	Hop        int
	Ratios     []float64
	WorstFrame int
	WorstRatio float64
	// Clicks lists the frames whose ratio exceeds the threshold.
	Clicks []int
}

// FrameStart returns the sample offset of frame i.
func (r ClickReport) FrameStart(i int) int {
	return i * r.Hop
}

// DetectClicks scans a signal for discontinuities. Each half-overlapping,
// Hann-windowed frame is transformed and the fraction of its energy above
// cutoffHz is compared against threshold. A smooth gain ramp over a tonal
// signal keeps that fraction tiny; a step in the signal spreads energy across
// the whole spectrum.
func DetectClicks(samples []float32, sampleRate, cutoffHz float64, frameSize int, threshold float64) (ClickReport, error) {
	if frameSize < 64 || frameSize&(frameSize-1) != 0 {
		return ClickReport{}, ErrFrameSize
	}
	if sampleRate <= 0 || cutoffHz <= 0 || cutoffHz >= sampleRate/2 {
		return ClickReport{}, fmt.Errorf("cutoff %.1f Hz outside (0, %.1f)", cutoffHz, sampleRate/2)
	}

	report := ClickReport{FrameSize: frameSize, Hop: frameSize / 2, WorstFrame: -1}

	window := make([]float64, frameSize)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(frameSize))
	}

	half := frameSize/2 + 1
	cutBin := int(math.Ceil(cutoffHz * float64(frameSize) / sampleRate))
	frame := make([]float64, frameSize)
	power := make([]float64, half)

	for start := 0; start+frameSize <= len(samples); start += report.Hop {
		for i := range frame {
			frame[i] = float64(samples[start+i])
		}
		floats.Mul(frame, window)

		spectrum := fft.FFTReal(frame)
		for k := 0; k < half; k++ {
			re, im := real(spectrum[k]), imag(spectrum[k])
			power[k] = re*re + im*im
		}

		ratio := 0.0
		if total := floats.Sum(power); total > 0 {
			ratio = floats.Sum(power[cutBin:]) / total
		}
		report.Ratios = append(report.Ratios, ratio)
	}

	if len(report.Ratios) == 0 {
		return report, nil
	}

	report.WorstFrame = floats.MaxIdx(report.Ratios)
	report.WorstRatio = report.Ratios[report.WorstFrame]
	for i, r := range report.Ratios {
		if r > threshold {
			report.Clicks = append(report.Clicks, i)
		}
	}
	return report, nil
}

// Global audio debugging functions

var defaultAnalyzer = NewAudioAnalyzer()

// AnalyzeBuffer performs analysis on a buffer using the default analyzer.
func AnalyzeBuffer(buffer []float32) AnalysisResult {
	return defaultAnalyzer.Analyze(buffer)
}

// CheckAudioBuffer logs the sanity check issues of a buffer as warnings.
func CheckAudioBuffer(buffer []float32, name string) {
	for _, issue := range CheckBuffer(buffer, name) {
		Warn("%s", issue)
	}
}

// LogBufferStats logs statistics about an audio buffer.
func LogBufferStats(buffer []float32, name string) {
	result := defaultAnalyzer.Analyze(buffer)

	Info("Audio buffer '%s' stats:", name)
	Info("  Samples: %d", len(buffer))
	Info("  Peak: %.3f", result.Peak)
	Info("  RMS: %.3f", result.RMS)
	Info("  DC: %.6f", result.DC)
	Info("  Max jump: %.6f at %d", result.MaxJump, result.MaxJumpIdx)

	if result.Clipping {
		Warn("  Clipping: %d samples", result.ClippedSamples)
	}
	if result.Silent {
		Info("  Status: Silent")
	}
	if result.HasNaN {
		Error("  NaN values: %d", result.NaNCount)
	}
}
