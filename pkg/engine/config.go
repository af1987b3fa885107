package engine

import (
	"log/slog"
	"runtime"
	"time"
)

// Config holds all parameters for a batch run.
type Config struct {
	Workers int           `json:"workers"`
	Steps   int           `json:"steps"`  // generations passed to resolver Init; 0 = derive from formulas
	Format  string        `json:"format"` // "text" or "json"
	Timeout time.Duration `json:"timeout"`
	Logger  *slog.Logger  `json:"-"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
		Steps:   0,
		Format:  "text",
		Timeout: 30 * time.Second,
	}
}

// Formula is one named formula of a batch. A non-nil ID scopes the aliases
// declared in Text to that entity.
type Formula struct {
	Name string `json:"name"`
	ID   *int64 `json:"id,omitempty"`
	Text string `json:"text"`
}
