// Package config loads the assistant configuration.
//
// Values are resolved in this order, later sources winning:
//
//	built-in defaults
//	YAML file (default: os.UserConfigDir()/kurt/config.yaml, optional)
//	environment (KURT_NAME, KURT_PROVIDER, KURT_MODEL, KURT_VOICE)
//
// A .env file in the working directory is loaded into the environment
// first, so API keys and overrides can live there too.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appDir         = "kurt"
	configFileName = "config.yaml"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	AudioMiniaudio = "miniaudio"
	AudioPortaudio = "portaudio"
)

type Config struct {
	Assistant AssistantConfig `yaml:"assistant"`
	LLM       LLMConfig       `yaml:"llm"`
	Speech    SpeechConfig    `yaml:"speech"`
	Audio     AudioConfig     `yaml:"audio"`
}

type AssistantConfig struct {
	Name       string `yaml:"name" jsonschema:"description=Name the assistant answers to"`
	Creator    string `yaml:"creator" jsonschema:"description=Creator named in the default persona"`
	Preamble   string `yaml:"preamble,omitempty" jsonschema:"description=Persona text put before every prompt"`
	MaxHistory int    `yaml:"max_history" jsonschema:"minimum=1,description=Exchanges shown and sent as context"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" jsonschema:"enum=gemini,enum=openai"`
	Model    string `yaml:"model,omitempty" jsonschema:"description=Provider model name; empty uses the provider default"`
	BaseURL  string `yaml:"base_url,omitempty" jsonschema:"description=Override of the provider API endpoint"`
}

type SpeechConfig struct {
	Enabled         bool     `yaml:"enabled" jsonschema:"description=Speak replies aloud"`
	Voice           string   `yaml:"voice" jsonschema:"description=Deepgram Aura voice"`
	STTModel        string   `yaml:"stt_model" jsonschema:"description=Deepgram transcription model"`
	Language        string   `yaml:"language"`
	ListenTimeout   Duration `yaml:"listen_timeout"`
	PhraseTimeLimit Duration `yaml:"phrase_time_limit"`
}

type AudioConfig struct {
	Backend    string `yaml:"backend" jsonschema:"enum=miniaudio,enum=portaudio"`
	BufferSize int    `yaml:"buffer_size" jsonschema:"minimum=0,description=PortAudio frames per buffer"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Assistant: AssistantConfig{
			Name:       "Kurt",
			Creator:    "Guka",
			MaxHistory: 5,
		},
		LLM: LLMConfig{Provider: ProviderGemini},
		Speech: SpeechConfig{
			Enabled:         true,
			Voice:           "aura-2-apollo-en",
			STTModel:        "nova-3",
			Language:        "en-US",
			ListenTimeout:   Duration(5 * time.Second),
			PhraseTimeLimit: Duration(5 * time.Second),
		},
		Audio: AudioConfig{Backend: AudioMiniaudio, BufferSize: 1024},
	}
}

// DefaultPath returns the config file location under the user config
// directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, configFileName), nil
}

// Load reads the config file at path, or the default path when path is
// empty. A missing default file is not an error; a missing explicit file
// is.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from KURT_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if value, ok := lookup("KURT_NAME"); ok && value != "" {
		c.Assistant.Name = value
	}
	if value, ok := lookup("KURT_PROVIDER"); ok && value != "" {
		c.LLM.Provider = value
	}
	if value, ok := lookup("KURT_MODEL"); ok && value != "" {
		c.LLM.Model = value
	}
	if value, ok := lookup("KURT_VOICE"); ok && value != "" {
		c.Speech.Voice = value
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Assistant.Name == "" {
		errs = append(errs, errors.New("assistant.name must not be empty"))
	}
	if c.Assistant.MaxHistory < 1 {
		errs = append(errs, fmt.Errorf("assistant.max_history must be at least 1, got %d", c.Assistant.MaxHistory))
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.LLM.Provider))
	}
	switch c.Audio.Backend {
	case AudioMiniaudio, AudioPortaudio:
	default:
		errs = append(errs, fmt.Errorf("audio.backend must be %q or %q, got %q", AudioMiniaudio, AudioPortaudio, c.Audio.Backend))
	}
	if c.Audio.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_size must not be negative"))
	}
	if c.Speech.ListenTimeout <= 0 || c.Speech.PhraseTimeLimit <= 0 {
		errs = append(errs, errors.New("speech timeouts must be positive"))
	}
	return errors.Join(errs...)
}

// Marshal renders cfg as YAML, e.g. for writing a starter config file.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
