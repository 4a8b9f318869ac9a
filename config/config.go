package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Speech        SpeechConfig        `yaml:"speech"`
	LLM           LLMConfig           `yaml:"llm"`
	Whisper       WhisperConfig       `yaml:"whisper"`
	Audio         AudioConfig         `yaml:"audio"`
	Conversation  ConversationConfig  `yaml:"conversation"`
	Pushover      PushoverConfig      `yaml:"pushover"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Log           LogConfig           `yaml:"log"`
}

// SpeechConfig selects the speech-to-text backend and configures Azure
// Speech, which also does synthesis.
type SpeechConfig struct {
	Provider string `yaml:"provider"`
	Key      string `yaml:"key"`
	Region   string `yaml:"region"`
	Language string `yaml:"language"`
	Voice    string `yaml:"voice"`
}

type LLMConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
}

type WhisperConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	Output     string `yaml:"output"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token"`
}

type ConversationConfig struct {
	WakePhrase    string `yaml:"wake_phrase"`
	StopPhrase    string `yaml:"stop_phrase"`
	ThanksPhrase  string `yaml:"thanks_phrase"`
	FarewellReply string `yaml:"farewell_reply"`
	SpeakFarewell bool   `yaml:"speak_farewell"`

	// MaxConsecutiveCancellations ends the conversation after that many
	// recognition cancellations in a row. Zero keeps listening forever.
	MaxConsecutiveCancellations int `yaml:"max_consecutive_cancellations"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

// HomeAssistantConfig sends each reply to a notify service of a Home
// Assistant instance.
type HomeAssistantConfig struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	NotifyService string `yaml:"notify_service"`
	Enabled       bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file. ${VAR} references are expanded from the
// environment, after any .env file in the working directory has been loaded.
func Load(path string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv builds the config from environment variables only.
func LoadFromEnv() (*Config, error) {
	loadDotEnv()

	var cfg Config
	cfg.Audio.Source = os.Getenv("INDIGO_AUDIO_SOURCE")
	cfg.Audio.Output = os.Getenv("INDIGO_AUDIO_OUTPUT")
	cfg.Audio.AuthToken = os.Getenv("INDIGO_AUTH_TOKEN")
	cfg.Log.Level = os.Getenv("INDIGO_LOG_LEVEL")

	if v := os.Getenv("INDIGO_MAX_CANCELLATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing INDIGO_MAX_CANCELLATIONS: %w", err)
		}
		cfg.Conversation.MaxConsecutiveCancellations = n
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()
}

func (c *Config) setDefaults() {
	if c.Speech.Provider == "" {
		c.Speech.Provider = "azure"
	}
	if c.Speech.Key == "" {
		c.Speech.Key = os.Getenv("SPEECH_KEY")
	}
	if c.Speech.Region == "" {
		c.Speech.Region = os.Getenv("SPEECH_REGION")
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "en-GB-SoniaNeural"
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "azure"
	}
	if c.LLM.Provider == "azure" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv("OPEN_AI_KEY")
		}
		if c.LLM.Endpoint == "" {
			c.LLM.Endpoint = os.Getenv("OPEN_AI_ENDPOINT")
		}
	}
	if c.LLM.Deployment == "" {
		c.LLM.Deployment = "text-davinci-002"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 100
	}

	if c.Whisper.APIKey == "" {
		c.Whisper.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}

	if c.Audio.Source == "" {
		c.Audio.Source = "microphone"
	}
	if c.Audio.Output == "" {
		c.Audio.Output = "speaker"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}

	if c.Conversation.WakePhrase == "" {
		c.Conversation.WakePhrase = "Hey, Indigo."
	}
	if c.Conversation.StopPhrase == "" {
		c.Conversation.StopPhrase = "Stop."
	}
	if c.Conversation.ThanksPhrase == "" {
		c.Conversation.ThanksPhrase = "Thanks Indigo."
	}
	if c.Conversation.FarewellReply == "" {
		c.Conversation.FarewellReply = "You're Welcome"
	}

	if c.HomeAssistant.NotifyService == "" {
		c.HomeAssistant.NotifyService = "notify"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Speech.Provider {
	case "azure":
		errs = append(errs, requireSet("SPEECH_KEY", c.Speech.Key), requireSet("SPEECH_REGION", c.Speech.Region))
		if c.Audio.SampleRate != 16000 {
			errs = append(errs, fmt.Errorf("azure speech recognition takes 16000 Hz audio, got audio.sample_rate %d", c.Audio.SampleRate))
		}
	case "whisper":
		errs = append(errs, requireSet("whisper.api_key", c.Whisper.APIKey))
	case "none":
		if c.Audio.Source == "microphone" {
			errs = append(errs, errors.New("speech provider none needs a text capable audio source (http or file)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown speech provider %q", c.Speech.Provider))
	}

	// Synthesis always goes through Azure Speech.
	if c.Speech.Provider != "azure" {
		errs = append(errs, requireSet("SPEECH_KEY", c.Speech.Key), requireSet("SPEECH_REGION", c.Speech.Region))
	}

	switch c.LLM.Provider {
	case "azure":
		errs = append(errs, requireSet("OPEN_AI_KEY", c.LLM.APIKey), requireSet("OPEN_AI_ENDPOINT", c.LLM.Endpoint))
	case "openai", "anthropic", "gemini":
		errs = append(errs, requireSet("llm.api_key", c.LLM.APIKey))
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	if c.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.Conversation.MaxConsecutiveCancellations < 0 {
		errs = append(errs, fmt.Errorf("conversation.max_consecutive_cancellations must not be negative"))
	}

	switch c.Audio.Source {
	case "microphone", "http", "file":
	default:
		errs = append(errs, fmt.Errorf("unknown audio source %q", c.Audio.Source))
	}
	switch c.Audio.Output {
	case "speaker", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown audio output %q", c.Audio.Output))
	}

	if c.Pushover.Enabled {
		errs = append(errs, requireSet("pushover.token", c.Pushover.Token), requireSet("pushover.user_key", c.Pushover.UserKey))
	}

	if c.HomeAssistant.Enabled {
		errs = append(errs, requireSet("homeassistant.url", c.HomeAssistant.URL), requireSet("homeassistant.token", c.HomeAssistant.Token))
	}

	return errors.Join(errs...)
}

func requireSet(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
