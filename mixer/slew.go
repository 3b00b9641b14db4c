package mixer

import "time"

// rateLimiter caps how fast a servo input may move. The state carries over
// between ticks, so each rule needs its own limiter.
type rateLimiter struct {
	state float64
}

// apply moves toward input by at most rate units per second. A rate of 0
// passes input straight through.
func (l *rateLimiter) apply(input float64, rate float64, dT time.Duration) float64 {
	if rate <= 0 {
		l.state = input
		return input
	}
	step := rate * dT.Seconds()
	l.state = constrain(input, l.state-step, l.state+step)
	return l.state
}

func (l *rateLimiter) reset(value float64) {
	l.state = value
}
