// Package config loads the game's tunable constants (speed/turn limits,
// timeouts, AI depth bounds, analyzer offsets) from an optional YAML file,
// falling back to hard defaults otherwise. The load path is an outer
// envelope unmarshalled by viper, whose "def" payload is re-marshalled and
// unmarshalled into the typed inner config, because viper's own struct-tag
// unmarshalling doesn't play well with the discriminated outer/inner split
// used here.
package config

import (
	"math"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Constants holds every process-wide tunable the game recognizes.
//
// No yaml tags on purpose: viper lowercases every key it reads, so the
// re-marshalled payload only matches yaml's default lowercased field
// names; explicit camelCase tags would never match anything.
type Constants struct {
	MaxNumLaps int
	PlusSpeed  float64
	MinusSpeed float64
	TurnAngle  float64
	TimeoutSec float64

	FixedDepth struct {
		MaxDepth int
	}

	MonteCarlo struct {
		MaxDepth         int
		NumThreads       int
		NumRandomPlayMin int
		NumRandomPlayMax int
	}

	AStar struct {
		MaxDepth  int
		Factor    float64
		YawBinDeg float64
		SpeedBin  float64
	}

	Analyzer struct {
		OffsetFactor float64
		ExtraLength  float64
	}

	Scoring struct {
		CrashScore   float64
		MinimumScore float64
	}
}

// A crash must dominate every drivable outcome and a finish must dominate
// every non-finishing one; 10^6 clears both margins on any sane track.
const (
	defaultCrashScore   = 1e6
	defaultMinimumScore = -1e6
)

// Default returns the built-in constants.
func Default() *Constants {
	c := &Constants{
		MaxNumLaps: 10,
		PlusSpeed:  1,
		MinusSpeed: 1,
		TurnAngle:  math.Pi/4 + math.Pi/180,
		TimeoutSec: 90,
	}
	c.FixedDepth.MaxDepth = 2
	c.MonteCarlo.MaxDepth = 6
	c.MonteCarlo.NumThreads = 8
	c.MonteCarlo.NumRandomPlayMin = 200
	c.MonteCarlo.NumRandomPlayMax = 400
	c.AStar.MaxDepth = 8
	c.AStar.Factor = 1.5
	c.AStar.YawBinDeg = 15
	c.AStar.SpeedBin = 0.5
	c.Analyzer.OffsetFactor = 0.1
	c.Analyzer.ExtraLength = 3 * c.Analyzer.OffsetFactor
	c.Scoring.CrashScore = defaultCrashScore
	c.Scoring.MinimumScore = defaultMinimumScore
	return c
}

// outerConfig is the envelope viper reads: a "kind" discriminator plus an
// opaque "def" payload holding the actual constants.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// FromYAML loads Constants from a YAML file at path, starting from
// Default() and overlaying whatever the file specifies.
func FromYAML(path string) (*Constants, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// YawBinRadians returns the AStar yaw quantization bucket width in radians.
func (c *Constants) YawBinRadians() float64 {
	return c.AStar.YawBinDeg * math.Pi / 180
}
