/*
Package config manages TOML configuration for the catalog search engine.

Every tunable the matching pipeline depends on lives here: scoring weights,
edit-distance bounds, correction thresholds and the compound-term replacement
table. Callers that pass nil get the builtin defaults.
*/
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire engine configuration.
type Config struct {
	Engine       EngineConfig      `toml:"engine"`
	Scoring      ScoringConfig     `toml:"scoring"`
	Ranking      RankingConfig     `toml:"ranking"`
	Suggest      SuggestConfig     `toml:"suggest"`
	Server       ServerConfig      `toml:"server"`
	Replacements map[string]string `toml:"replacements"`
}

// EngineConfig bounds the query pipeline.
type EngineConfig struct {
	MaxEditDistance      int     `toml:"max_edit_distance"`
	MaxQueryLength       int     `toml:"max_query_length"`
	MaxTokens            int     `toml:"max_tokens"`
	MinTokenLength       int     `toml:"min_token_length"`
	CorrectionConfidence float64 `toml:"correction_confidence"`
	ExposeCorrections    bool    `toml:"expose_corrections"`
	BuildWorkers         int     `toml:"build_workers"`
}

// ScoringConfig holds the combined-score weights. The split between the
// individual metrics is tunable on purpose; nothing in the engine assumes
// the weights sum to one.
type ScoringConfig struct {
	Distance    float64 `toml:"distance"`
	Jaro        float64 `toml:"jaro"`
	NGram       float64 `toml:"ngram"`
	Substring   float64 `toml:"substring"`
	Frequency   float64 `toml:"frequency"`
	LengthBonus float64 `toml:"length_bonus"`
}

// RankingConfig weights record fields when ordering search results.
type RankingConfig struct {
	Title       float64 `toml:"title"`
	Summary     float64 `toml:"summary"`
	Tags        float64 `toml:"tags"`
	Description float64 `toml:"description"`
	PhraseBonus float64 `toml:"phrase_bonus"`
}

// SuggestConfig tunes the autocomplete path, which runs with a lower
// similarity floor than full search.
type SuggestConfig struct {
	MinSimilarity    float64 `toml:"min_similarity"`
	MinFrequency     int     `toml:"min_frequency"`
	ShortPrefixFloor int     `toml:"short_prefix_floor"`
	MaxLimit         int     `toml:"max_limit"`
}

// ServerConfig has options for the IPC front end.
type ServerConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// Default returns a Config with builtin values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxEditDistance:      4,
			MaxQueryLength:       100,
			MaxTokens:            10,
			MinTokenLength:       2,
			CorrectionConfidence: 0.8,
			ExposeCorrections:    false,
			BuildWorkers:         4,
		},
		Scoring: ScoringConfig{
			Distance:    0.25,
			Jaro:        0.30,
			NGram:       0.20,
			Substring:   0.15,
			Frequency:   0.10,
			LengthBonus: 0.10,
		},
		Ranking: RankingConfig{
			Title:       3.0,
			Summary:     2.0,
			Tags:        1.5,
			Description: 1.0,
			PhraseBonus: 2.5,
		},
		Suggest: SuggestConfig{
			MinSimilarity:    0.5,
			MinFrequency:     1,
			ShortPrefixFloor: 3,
			MaxLimit:         24,
		},
		Server: ServerConfig{
			DefaultLimit: 10,
			MaxLimit:     64,
		},
		Replacements: map[string]string{
			"node js":     "nodejs",
			"type script": "typescript",
			"java script": "javascript",
			"react js":    "reactjs",
			"next js":     "nextjs",
			"c sharp":     "csharp",
			"dot net":     "dotnet",
		},
	}
}

// Load reads a TOML file over the builtin defaults. Unknown keys are
// ignored; missing sections keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWithPriority loads config from customPath when set, falling back to
// builtin defaults when the file is missing or unreadable.
func LoadWithPriority(customPath string) *Config {
	if customPath == "" {
		return Default()
	}
	if _, err := os.Stat(customPath); err != nil {
		log.Warnf("Config file not found at %s: %v. Using builtin defaults.", customPath, err)
		return Default()
	}
	cfg, err := Load(customPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using builtin defaults.", customPath, err)
		return Default()
	}
	log.Debugf("Loaded config from %s", customPath)
	return cfg
}

// Save writes the config as TOML.
func Save(cfg *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config %s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
