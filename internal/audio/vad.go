package audio

// Defaults for 16 kHz dictation: 25 silent frames is 500 ms of hangover.
const (
	defaultSpeechThreshold = 500.0
	defaultHangoverFrames  = 25
)

// VADDetector tracks whether the local input currently contains speech,
// keyed on per-frame RMS energy. The server performs the authoritative
// voice activity detection; this detector only drives operator feedback
// and never gates or drops audio.
type VADDetector struct {
	threshold float64 // RMS level above which a frame counts as speech
	hangover  int     // silent frames tolerated before a run ends

	silentRun int
	speaking  bool
}

// NewVADDetector creates a detector. Zero values select the 16 kHz
// dictation defaults.
func NewVADDetector(threshold float64, hangoverFrames int) *VADDetector {
	if threshold <= 0 {
		threshold = defaultSpeechThreshold
	}
	if hangoverFrames <= 0 {
		hangoverFrames = defaultHangoverFrames
	}
	return &VADDetector{threshold: threshold, hangover: hangoverFrames}
}

// ProcessFrame folds one frame of samples into the running state and
// reports (speaking, speechStarted, speechEnded). A speech run ends only
// after the full hangover, so brief pauses inside an utterance do not flap.
func (v *VADDetector) ProcessFrame(samples []int16) (speaking, speechStarted, speechEnded bool) {
	if CalculateRMS(samples) > v.threshold {
		v.silentRun = 0
		if !v.speaking {
			v.speaking = true
			speechStarted = true
		}
		return v.speaking, speechStarted, false
	}

	if v.speaking {
		v.silentRun++
		if v.silentRun >= v.hangover {
			v.speaking = false
			v.silentRun = 0
			speechEnded = true
		}
	}
	return v.speaking, false, speechEnded
}

// Reset clears the detector state.
func (v *VADDetector) Reset() {
	v.silentRun = 0
	v.speaking = false
}

// IsSpeaking reports whether speech is currently detected.
func (v *VADDetector) IsSpeaking() bool {
	return v.speaking
}
