package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/motor"
)

func TestDefaultConfigMatchesMotor(t *testing.T) {
	mc, err := DefaultConfig().ToMotor()
	require.NoError(t, err)
	assert.Equal(t, motor.DefaultConfig(), mc)
}

func TestFromMotorRoundTrip(t *testing.T) {
	m := motor.DefaultConfig()
	m.Valve = hybrid.ValveKv
	m.InitialTemperature = 292
	m.StopOnExcessiveFlux = true
	m.InjectorCount = 8

	cfg := FromMotor(m)
	assert.Equal(t, "kv", cfg.Feed.Valve)
	assert.Empty(t, cfg.Tables.Propellant)

	back, err := cfg.ToMotor()
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestDefaultConfigLogging(t *testing.T) {
	assert.Equal(t, "info", DefaultConfig().Log.Level)
	assert.Equal(t, "thick-orifice", DefaultConfig().Feed.Valve)
}

func TestToMotorValve(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Feed.Valve = "kv"
	mc, err := cfg.ToMotor()
	require.NoError(t, err)
	assert.Equal(t, hybrid.ValveKv, mc.Valve)

	cfg.Feed.Valve = "thick-orifice"
	mc, err = cfg.ToMotor()
	require.NoError(t, err)
	assert.Equal(t, hybrid.ValveThickOrifice, mc.Valve)

	cfg.Feed.Valve = "gate"
	_, err = cfg.ToMotor()
	assert.True(t, errors.Is(err, hybrid.ErrInvalidConfig), "got %v", err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.yaml")

	cfg := DefaultConfig()
	cfg.Nozzle.ThroatDiameter = 0.018
	cfg.Feed.Valve = "kv"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tank:\n  temperature: 290\nsimulation:\n  dt: 0.005\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 290.0, cfg.Tank.Temperature)
	assert.Equal(t, 0.005, cfg.Simulation.Dt)
	assert.Equal(t, DefaultConfig().Tank.HeadSpace, cfg.Tank.HeadSpace)
	assert.Equal(t, 12, cfg.Injector.Count)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tank: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolveFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nozzle:\n  throat_diameter: 0.019\nfeed:\n  valve: kv\n"), 0644))

	t.Setenv("HYBRIDSIM_SIMULATION_DT", "0.02")
	t.Setenv("HYBRIDSIM_SAFETY_STOP_ON_EXCESSIVE_FLUX", "true")
	t.Setenv("HYBRIDSIM_INJECTOR_COUNT", "10")

	cfg, err := Resolve(path)
	require.NoError(t, err)

	assert.Equal(t, 0.019, cfg.Nozzle.ThroatDiameter)
	assert.Equal(t, "kv", cfg.Feed.Valve)
	assert.Equal(t, 0.02, cfg.Simulation.Dt)
	assert.True(t, cfg.Safety.StopOnExcessiveFlux)
	assert.Equal(t, 10, cfg.Injector.Count)
	assert.Equal(t, DefaultConfig().Grain, cfg.Grain)
}

func TestResolveEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tank:\n  temperature: 290\n"), 0644))
	t.Setenv("HYBRIDSIM_TANK_TEMPERATURE", "296")

	cfg, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, 296.0, cfg.Tank.Temperature)
}

func TestResolveMissingFile(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveFromPreset(t *testing.T) {
	cfg, err := ResolveFrom(GetPreset("short-grain"), "")
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Grain.OuterDiameter)
	assert.Equal(t, 0.6, cfg.Grain.PortLength)
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			require.NotNil(t, cfg)
			mc, err := cfg.ToMotor()
			require.NoError(t, err)
			assert.NoError(t, mc.Validate())
		})
	}

	assert.Nil(t, GetPreset("nonexistent"))
	assert.Equal(t, DefaultConfig(), GetPreset("pulsar"))
}

func TestPresetsAreIndependent(t *testing.T) {
	a := GetPreset("cold-tank")
	a.Tank.Temperature = 250
	b := GetPreset("cold-tank")
	assert.Equal(t, 295.15, b.Tank.Temperature)
}

func TestOverride(t *testing.T) {
	base := GetPreset("kv-valve")
	cfg, err := Override(base, map[string]any{
		"tank.temperature":       292.0,
		"Nozzle.Throat_Diameter": 0.018,
		"injector.count":         10,
	})
	require.NoError(t, err)

	assert.Equal(t, 292.0, cfg.Tank.Temperature)
	assert.Equal(t, 0.018, cfg.Nozzle.ThroatDiameter)
	assert.Equal(t, 10, cfg.Injector.Count)
	assert.Equal(t, "kv", cfg.Feed.Valve)
	// base is untouched
	assert.Equal(t, 298.15, base.Tank.Temperature)
}

func TestOverrideUnknownKey(t *testing.T) {
	_, err := Override(DefaultConfig(), map[string]any{"tank.colour": 1.0})
	assert.True(t, errors.Is(err, hybrid.ErrInvalidConfig), "got %v", err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "tank.temperature")
	assert.Contains(t, keys, "safety.stop_on_excessive_flux")
	assert.IsIncreasing(t, keys)
}
