package protocol

// SessionConfig is the session configuration document serialized into the
// StartSession payload. Field names and the nested extra block are part of
// the server contract.
type SessionConfig struct {
	AudioInfo              AudioInfo    `json:"audio_info"`
	EnablePunctuation      bool         `json:"enable_punctuation"`
	EnableSpeechRejection  bool         `json:"enable_speech_rejection"`
	Extra                  SessionExtra `json:"extra"`
}

// AudioInfo describes the audio format of the frames that follow.
type AudioInfo struct {
	Channel    int    `json:"channel"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
}

// SessionExtra is the identity block nested inside the session configuration.
type SessionExtra struct {
	AppName             string `json:"app_name"`
	CellCompressRate    int    `json:"cell_compress_rate"`
	DID                 string `json:"did"`
	EnableASRThreepass  bool   `json:"enable_asr_threepass"`
	EnableASRTwopass    bool   `json:"enable_asr_twopass"`
	InputMode           string `json:"input_mode"`
}

// NewSessionConfig returns the session configuration used for dictation:
// Opus frames at the given rate, punctuation on, speech rejection off.
func NewSessionConfig(deviceID string, sampleRate, channels int) *SessionConfig {
	return &SessionConfig{
		AudioInfo: AudioInfo{
			Channel:    channels,
			Format:     "speech_opus",
			SampleRate: sampleRate,
		},
		EnablePunctuation:     true,
		EnableSpeechRejection: false,
		Extra: SessionExtra{
			AppName:            "com.android.chrome",
			CellCompressRate:   8,
			DID:                deviceID,
			EnableASRThreepass: true,
			EnableASRTwopass:   true,
			InputMode:          "tool",
		},
	}
}
