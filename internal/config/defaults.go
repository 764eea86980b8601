package config

// Failure policies for presets whose external tools exit non-zero.
const (
	FailurePolicyContinue = "continue"
	FailurePolicyHalt     = "halt"
)

const (
	defaultConfigPath           = "~/.config/hlsmaker/config.toml"
	defaultStateDir             = "~/.local/share/hlsmaker"
	defaultLogDir               = "~/.local/share/hlsmaker/logs"
	defaultHistoryFile          = "history.db"
	defaultTranscoder           = "HandBrakeCLI"
	defaultSegmenter            = "mediafilesegmenter"
	defaultTargetDuration       = 10
	defaultAspect               = "widescreen"
	defaultFailurePolicy        = FailurePolicyContinue
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNotifyRequestTimeout = 10
	defaultMaxOutputBytes       = 1 << 20
	defaultSearchDirWorkingDir  = "."
	defaultSearchDirSystemBin   = "/usr/bin"
	defaultSearchDirLocalBin    = "/usr/local/bin"
	envNtfyTopic                = "HLSMAKER_NTFY_TOPIC"
	envTranscoder               = "HLSMAKER_TRANSCODER"
	envSegmenter                = "HLSMAKER_SEGMENTER"
	envMetricsTextfile          = "HLSMAKER_METRICS_TEXTFILE"
	defaultHistoryEnabled       = true
	defaultLoggingWriteFile     = false
	defaultNotifyRunCompleted   = true
	defaultNotifyErrors         = true
	defaultKeepIntermediate     = false
)

func defaultSearchDirs() []string {
	return []string{defaultSearchDirWorkingDir, defaultSearchDirSystemBin, defaultSearchDirLocalBin}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Tools: Tools{
			Transcoder:     defaultTranscoder,
			Segmenter:      defaultSegmenter,
			SearchDirs:     defaultSearchDirs(),
			TargetDuration: defaultTargetDuration,
			MaxOutputBytes: defaultMaxOutputBytes,
		},
		Output: Output{
			Aspect:           defaultAspect,
			FailurePolicy:    defaultFailurePolicy,
			KeepIntermediate: defaultKeepIntermediate,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RunCompleted:   defaultNotifyRunCompleted,
			Errors:         defaultNotifyErrors,
		},
		Logging: Logging{
			Format:    defaultLogFormat,
			Level:     defaultLogLevel,
			WriteFile: defaultLoggingWriteFile,
		},
	}
}
