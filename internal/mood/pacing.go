package mood

// Speech-rate bands, in words per minute.
const (
	SlowSpeechWPM = 110
	FastSpeechWPM = 170

	pacingTempoShift  = 10
	pacingEnergyShift = 0.05
)

// ApplyPacing nudges a profile toward the delivery speed of the speaker.
// Fast talkers get a slightly quicker, more energetic bed; slow talkers a
// calmer one. A non-positive wpm means unknown and leaves p unchanged apart
// from clamping.
func ApplyPacing(p Profile, wpm float64) Profile {
	switch {
	case wpm <= 0:
	case wpm > FastSpeechWPM:
		p.TempoMin += pacingTempoShift
		p.TempoMax += pacingTempoShift
		p.Energy += pacingEnergyShift
	case wpm < SlowSpeechWPM:
		p.TempoMin -= pacingTempoShift
		p.TempoMax -= pacingTempoShift
		p.Energy -= pacingEnergyShift
	}
	return p.Clamp()
}
