package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/motor"
)

// EnvPrefix prefixes environment overrides, e.g. HYBRIDSIM_SIMULATION_DT.
const EnvPrefix = "HYBRIDSIM"

type Config struct {
	Tank        TankConfig        `yaml:"tank" mapstructure:"tank"`
	Injector    InjectorConfig    `yaml:"injector" mapstructure:"injector"`
	Grain       GrainConfig       `yaml:"grain" mapstructure:"grain"`
	Nozzle      NozzleConfig      `yaml:"nozzle" mapstructure:"nozzle"`
	Feed        FeedConfig        `yaml:"feed" mapstructure:"feed"`
	Environment EnvironmentConfig `yaml:"environment" mapstructure:"environment"`
	Simulation  SimulationConfig  `yaml:"simulation" mapstructure:"simulation"`
	Safety      SafetyConfig      `yaml:"safety" mapstructure:"safety"`
	Tables      TablesConfig      `yaml:"tables" mapstructure:"tables"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

type TankConfig struct {
	Volume      float64 `yaml:"volume" mapstructure:"volume"`
	HeadSpace   float64 `yaml:"head_space" mapstructure:"head_space"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

type InjectorConfig struct {
	Count    int     `yaml:"count" mapstructure:"count"`
	Diameter float64 `yaml:"diameter" mapstructure:"diameter"`
	Cd       float64 `yaml:"cd" mapstructure:"cd"`
}

type GrainConfig struct {
	PortDiameter    float64 `yaml:"port_diameter" mapstructure:"port_diameter"`
	PortLength      float64 `yaml:"port_length" mapstructure:"port_length"`
	OuterDiameter   float64 `yaml:"outer_diameter" mapstructure:"outer_diameter"`
	Density         float64 `yaml:"density" mapstructure:"density"`
	RegressionA     float64 `yaml:"regression_a" mapstructure:"regression_a"`
	RegressionN     float64 `yaml:"regression_n" mapstructure:"regression_n"`
	CStarEfficiency float64 `yaml:"cstar_efficiency" mapstructure:"cstar_efficiency"`
}

type NozzleConfig struct {
	ThroatDiameter float64 `yaml:"throat_diameter" mapstructure:"throat_diameter"`
	Efficiency     float64 `yaml:"efficiency" mapstructure:"efficiency"`
	AreaRatio      float64 `yaml:"area_ratio" mapstructure:"area_ratio"`
}

type FeedConfig struct {
	PipeDiameter  float64 `yaml:"pipe_diameter" mapstructure:"pipe_diameter"`
	PipeLength    float64 `yaml:"pipe_length" mapstructure:"pipe_length"`
	Valve         string  `yaml:"valve" mapstructure:"valve"`
	Kv            float64 `yaml:"kv" mapstructure:"kv"`
	ValveDiameter float64 `yaml:"valve_diameter" mapstructure:"valve_diameter"`
	ValveLength   float64 `yaml:"valve_length" mapstructure:"valve_length"`
}

type EnvironmentConfig struct {
	ExternalPressure float64 `yaml:"external_pressure" mapstructure:"external_pressure"`
}

type SimulationConfig struct {
	Dt              float64 `yaml:"dt" mapstructure:"dt"`
	MaxDuration     float64 `yaml:"max_duration" mapstructure:"max_duration"`
	VaporGamma      float64 `yaml:"vapour_gamma" mapstructure:"vapour_gamma"`
	VaporizationLag float64 `yaml:"vaporization_lag" mapstructure:"vaporization_lag"`
}

type SafetyConfig struct {
	StartupTime         float64 `yaml:"startup_time" mapstructure:"startup_time"`
	MinDropRatio        float64 `yaml:"min_drop_ratio" mapstructure:"min_drop_ratio"`
	MaxFlux             float64 `yaml:"max_flux" mapstructure:"max_flux"`
	StopOnExcessiveFlux bool    `yaml:"stop_on_excessive_flux" mapstructure:"stop_on_excessive_flux"`
}

// TablesConfig points at replacement data tables. Empty paths use the
// embedded defaults.
type TablesConfig struct {
	Propellant      string `yaml:"propellant" mapstructure:"propellant"`
	Compressibility string `yaml:"compressibility" mapstructure:"compressibility"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig is the Pulsar motor as defined by motor.DefaultConfig.
func DefaultConfig() *Config {
	cfg := FromMotor(motor.DefaultConfig())
	cfg.Log = LogConfig{Level: "info"}
	return cfg
}

// FromMotor lays a motor configuration out as file sections. Table paths and
// logging are left empty.
func FromMotor(m motor.Config) *Config {
	return &Config{
		Tank: TankConfig{
			Volume:      m.TankVolume,
			HeadSpace:   m.HeadSpace,
			Temperature: m.InitialTemperature,
		},
		Injector: InjectorConfig{
			Count:    m.InjectorCount,
			Diameter: m.InjectorDiameter,
			Cd:       m.DischargeCoefficient,
		},
		Grain: GrainConfig{
			PortDiameter:    m.PortDiameter,
			PortLength:      m.PortLength,
			OuterDiameter:   m.OuterDiameter,
			Density:         m.FuelDensity,
			RegressionA:     m.RegressionCoefficient,
			RegressionN:     m.RegressionExponent,
			CStarEfficiency: m.CStarEfficiency,
		},
		Nozzle: NozzleConfig{
			ThroatDiameter: m.ThroatDiameter,
			Efficiency:     m.NozzleEfficiency,
			AreaRatio:      m.AreaRatio,
		},
		Feed: FeedConfig{
			PipeDiameter:  m.FeedDiameter,
			PipeLength:    m.FeedLength,
			Valve:         m.Valve.String(),
			Kv:            m.ValveKv,
			ValveDiameter: m.ValveDiameter,
			ValveLength:   m.ValveLength,
		},
		Environment: EnvironmentConfig{ExternalPressure: m.ExternalPressure},
		Simulation: SimulationConfig{
			Dt:              m.Dt,
			MaxDuration:     m.MaxDuration,
			VaporGamma:      m.VaporGamma,
			VaporizationLag: m.VaporizationLag,
		},
		Safety: SafetyConfig{
			StartupTime:         m.StartupTime,
			MinDropRatio:        m.MinDropRatio,
			MaxFlux:             m.MaxFlux,
			StopOnExcessiveFlux: m.StopOnExcessiveFlux,
		},
	}
}

// Load reads a YAML file over the defaults, so partial files are allowed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve layers defaults, an optional config file and HYBRIDSIM_*
// environment overrides, in increasing precedence.
func Resolve(path string) (*Config, error) {
	return ResolveFrom(DefaultConfig(), path)
}

// ResolveFrom is Resolve with an explicit base, such as a preset.
func ResolveFrom(base *Config, path string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, base); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Override returns a copy of base with dotted keys such as
// "tank.temperature" replaced. Unknown keys are rejected.
func Override(base *Config, values map[string]any) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, base); err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}
	for key, val := range values {
		k := strings.ToLower(key)
		if !known[k] {
			return nil, fmt.Errorf("%w: unknown key %q", hybrid.ErrInvalidConfig, key)
		}
		v.Set(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Keys lists every dotted key accepted by Override, sorted.
func Keys() []string {
	v := viper.New()
	if err := setDefaults(v, DefaultConfig()); err != nil {
		return nil
	}
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// setDefaults registers every leaf of base so that environment overrides
// apply to keys absent from the file.
func setDefaults(v *viper.Viper, base *Config) error {
	data, err := yaml.Marshal(base)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	for section, raw := range tree {
		fields, ok := raw.(map[string]any)
		if !ok {
			v.SetDefault(section, raw)
			continue
		}
		for key, val := range fields {
			v.SetDefault(section+"."+key, val)
		}
	}
	return nil
}

// ToMotor converts the file layout into simulator parameters.
func (c *Config) ToMotor() (motor.Config, error) {
	valve, err := hybrid.ParseValveModel(c.Feed.Valve)
	if err != nil {
		return motor.Config{}, err
	}

	return motor.Config{
		TankVolume:         c.Tank.Volume,
		HeadSpace:          c.Tank.HeadSpace,
		InitialTemperature: c.Tank.Temperature,

		InjectorCount:        c.Injector.Count,
		InjectorDiameter:     c.Injector.Diameter,
		DischargeCoefficient: c.Injector.Cd,

		PortDiameter:          c.Grain.PortDiameter,
		PortLength:            c.Grain.PortLength,
		OuterDiameter:         c.Grain.OuterDiameter,
		FuelDensity:           c.Grain.Density,
		RegressionCoefficient: c.Grain.RegressionA,
		RegressionExponent:    c.Grain.RegressionN,
		CStarEfficiency:       c.Grain.CStarEfficiency,

		ThroatDiameter:   c.Nozzle.ThroatDiameter,
		NozzleEfficiency: c.Nozzle.Efficiency,
		AreaRatio:        c.Nozzle.AreaRatio,

		FeedDiameter:  c.Feed.PipeDiameter,
		FeedLength:    c.Feed.PipeLength,
		Valve:         valve,
		ValveKv:       c.Feed.Kv,
		ValveDiameter: c.Feed.ValveDiameter,
		ValveLength:   c.Feed.ValveLength,

		ExternalPressure: c.Environment.ExternalPressure,

		Dt:              c.Simulation.Dt,
		MaxDuration:     c.Simulation.MaxDuration,
		VaporGamma:      c.Simulation.VaporGamma,
		VaporizationLag: c.Simulation.VaporizationLag,

		StartupTime:         c.Safety.StartupTime,
		MinDropRatio:        c.Safety.MinDropRatio,
		MaxFlux:             c.Safety.MaxFlux,
		StopOnExcessiveFlux: c.Safety.StopOnExcessiveFlux,
	}, nil
}
