package particle

// Relaxation constants. A speed factor above highSpeedThreshold switches to
// the stopwatch regime: fast rate, near-zero noise.
const (
	highSpeedThreshold   = 1.5
	fastBaseRate         = 0.3
	slowBaseRate         = 0.08
	rateJitter           = 0.05
	fastNoise            = 0.001
	slowNoise            = 0.005
	colorRateScale       = 0.1
	activeColorThreshold = 0.01
)

// Profile parameterizes the animator for one text element.
type Profile struct {
	SpeedFactor float32
}

var (
	// ProfileFloat drifts slowly into place; used for titles and footers.
	ProfileFloat = Profile{SpeedFactor: 0.5}
	// ProfileDefault is the neutral speed.
	ProfileDefault = Profile{SpeedFactor: 1.0}
	// ProfileStopwatch snaps mechanically with minimal jitter.
	ProfileStopwatch = Profile{SpeedFactor: 3.0}
)

// HighSpeed reports whether the profile is in the stopwatch regime.
func (p Profile) HighSpeed() bool { return p.SpeedFactor > highSpeedThreshold }

// BaseRate is the relaxation rate shared by every slot.
func (p Profile) BaseRate() float32 {
	if p.HighSpeed() {
		return fastBaseRate
	}
	return slowBaseRate
}

// SlotRate adds per-slot jitter so particles do not arrive in lockstep.
func (p Profile) SlotRate(offsetX float32) float32 {
	return p.BaseRate() + offsetX*rateJitter*p.SpeedFactor
}

// NoiseAmplitude is the XY wobble applied to a slot each frame.
func (p Profile) NoiseAmplitude(active bool) float32 {
	switch {
	case !active:
		return 0
	case p.HighSpeed():
		return fastNoise
	default:
		return slowNoise
	}
}

// ColorRate is the per-frame color relaxation rate.
func (p Profile) ColorRate() float32 { return colorRateScale * p.SpeedFactor }

// IsActiveColor reports whether a target color denotes a real glyph point.
// Only the red channel is consulted.
func IsActiveColor(r float32) bool { return r > activeColorThreshold }
