package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Download DownloadConfig `mapstructure:"download"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Engines  EngineConfig   `mapstructure:"engines"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir                 string        `mapstructure:"dir"`
	LogsDir             string        `mapstructure:"logs_dir"`
	CookieFile          string        `mapstructure:"cookie_file"`
	UserAgent           string        `mapstructure:"user_agent"`
	OutputTemplate      string        `mapstructure:"output_template"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	FragmentRetries     int           `mapstructure:"fragment_retries"`
	ConcurrentFragments int           `mapstructure:"concurrent_fragments"`
	SocketTimeout       time.Duration `mapstructure:"socket_timeout"`
}

// ResolverConfig bounds the headless stream resolution step.
type ResolverConfig struct {
	Budget       time.Duration `mapstructure:"budget"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// EngineConfig holds download-engine binaries and the escalation order.
type EngineConfig struct {
	YTDLPBinary      string   `mapstructure:"ytdlp_binary"`
	FFmpegBinary     string   `mapstructure:"ffmpeg_binary"`
	StreamlinkBinary string   `mapstructure:"streamlink_binary"`
	MPVBinary        string   `mapstructure:"mpv_binary"`
	Aria2cBinary     string   `mapstructure:"aria2c_binary"`
	Escalation       []string `mapstructure:"escalation"`
}

// AudioConfig controls the MP3 extraction pipeline.
type AudioConfig struct {
	Bitrate    string `mapstructure:"bitrate"`
	SampleRate int    `mapstructure:"sample_rate"`
	TempFile   string `mapstructure:"temp_file"`
	OutputFile string `mapstructure:"output_file"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultEscalation is the fixed fallback engine order used when the config
// does not override it.
func DefaultEscalation() []string {
	return []string{
		string(EngineStreamlink),
		string(EngineFFmpegDirect),
		string(EngineMPV),
		string(EngineAria2c),
		string(EngineBlobDetect),
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Download: DownloadConfig{
			Dir:                 "$HOME/Downloads/mediagrab",
			LogsDir:             "$HOME/Downloads/mediagrab/logs",
			CookieFile:          "cookies.txt",
			UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
			OutputTemplate:      "%(title)s.%(ext)s",
			MaxRetries:          3,
			RetryDelay:          2 * time.Second,
			FragmentRetries:     50,
			ConcurrentFragments: 32,
			SocketTimeout:       10 * time.Second,
		},
		Resolver: ResolverConfig{
			Budget:       10 * time.Second,
			ProbeTimeout: 2 * time.Second,
		},
		Engines: EngineConfig{
			YTDLPBinary:      "yt-dlp",
			FFmpegBinary:     "ffmpeg",
			StreamlinkBinary: "streamlink",
			MPVBinary:        "mpv",
			Aria2cBinary:     "aria2c",
			Escalation:       DefaultEscalation(),
		},
		Audio: AudioConfig{
			Bitrate:    "192k",
			SampleRate: 44100,
			TempFile:   "temp_audio.mp4",
			OutputFile: "converted_audio.mp3",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
