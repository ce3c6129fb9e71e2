// Package config loads the fleet planner's startup configuration from a
// YAML file, using the same two-stage viper-read-then-yaml-remarshal idiom
// the reinforcement trainer used for its own config: viper handles file
// discovery and format detection, then the section of interest is
// re-marshaled through yaml.v3 into a concrete, strongly-typed struct.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outerConfig mirrors the on-disk top-level shape:
//
//	kind: fleetPlanner
//	def:
//	  listenAddr: ":8080"
//	  graphFile: "./graph.yaml"
//	  ...
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds every tunable the fleet planner needs at startup. The yaml
// tags are lower-case because viper lower-cases every key it reads before
// the def section is re-marshaled; the file itself may use any case.
type Config struct {
	// ListenAddr is the address the HTTP/WebSocket server binds.
	ListenAddr string `yaml:"listenaddr"`
	// GraphFile is the path to the static road-graph YAML description.
	GraphFile string `yaml:"graphfile"`
	// AllocatorPeriod is how often the allocator loop ticks, e.g. "500ms".
	AllocatorPeriod string `yaml:"allocatorperiod"`
	// SearchMaxDepth bounds every A* search's discrete-time horizon.
	SearchMaxDepth int `yaml:"searchmaxdepth"`
	// WaitPenalty is the extra cost of waiting one tick in place during A*
	// search, e.g. 1.1.
	WaitPenalty float64 `yaml:"waitpenalty"`
}

// defaults applied to any field left zero-valued by the file.
const (
	defaultListenAddr      = ":8080"
	defaultAllocatorPeriod = "500ms"
	defaultSearchMaxDepth  = 60
	defaultWaitPenalty     = 1.1
)

// Load reads path (a YAML file with a top-level "kind"/"def" envelope,
// matching the rest of the fleet planner's config conventions) and returns
// the fully-populated Config.
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, fmt.Errorf("config: unmarshal envelope: %w", err)
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("config: remarshal def section: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(spec, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal fleet planner section: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.AllocatorPeriod == "" {
		cfg.AllocatorPeriod = defaultAllocatorPeriod
	}
	if cfg.SearchMaxDepth == 0 {
		cfg.SearchMaxDepth = defaultSearchMaxDepth
	}
	if cfg.WaitPenalty == 0 {
		cfg.WaitPenalty = defaultWaitPenalty
	}
}

// AllocatorTickInterval parses AllocatorPeriod into a time.Duration.
func (cfg *Config) AllocatorTickInterval() (time.Duration, error) {
	return time.ParseDuration(cfg.AllocatorPeriod)
}
