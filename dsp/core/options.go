package core

// ProcessorConfig defines the render settings negotiated with a host before
// resources are allocated.
type ProcessorConfig struct {
	SampleRate float64
	MaxFrames  int
	Channels   int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the stereo 44.1 kHz, 1024-frame defaults a
// host sees before it negotiates anything else.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		MaxFrames:  1024,
		Channels:   2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithMaxFrames sets the largest frame count a single render call may request.
func WithMaxFrames(maxFrames int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if maxFrames > 0 {
			cfg.MaxFrames = maxFrames
		}
	}
}

// WithChannels sets the channel count used for both buses.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
