package config

const (
	defaultWorkDir            = "~/.local/share/redub/work"
	defaultLogDir             = "~/.local/share/redub/logs"
	defaultVoicesFile         = "~/.config/redub/voices.json"
	defaultWindowSeconds      = 60
	defaultMinWindowMs        = 100
	defaultTranslationBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultTranslationModel   = "gpt-4"
	defaultChunkChars         = 4000
	defaultTranslationTimeout = 120
	defaultElevenLabsModel    = "eleven_multilingual_v2"
	defaultPauseMs            = 3000
	defaultMinSilenceMs       = 2000
	defaultSilenceThresholdDB = -30
	defaultPaddingMs          = 500
	defaultVolumeReductionDB  = 15
	defaultStretchToleranceMs = 500
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
			VoicesFile: defaultVoicesFile,
		},
		Transcription: Transcription{
			WindowSeconds: defaultWindowSeconds,
			MinWindowMs:   defaultMinWindowMs,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			ChunkChars:     defaultChunkChars,
			TimeoutSeconds: defaultTranslationTimeout,
		},
		Synthesis: Synthesis{
			ElevenLabsModel:   defaultElevenLabsModel,
			PauseMs:           defaultPauseMs,
			MinSilenceMs:      defaultMinSilenceMs,
			SilenceThresholdB: defaultSilenceThresholdDB,
			PaddingMs:         defaultPaddingMs,
		},
		Overlay: Overlay{
			VolumeReductionDB:  defaultVolumeReductionDB,
			StretchToleranceMs: defaultStretchToleranceMs,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
