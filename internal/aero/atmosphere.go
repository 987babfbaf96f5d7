package aero

import "math"

// Atmosphere is an exponential density model with a fixed speed of sound.
type Atmosphere struct {
	SeaLevelDensity float64 `yaml:"sea_level_density" json:"sea_level_density"` // kg/m^3
	ScaleHeight     float64 `yaml:"scale_height" json:"scale_height"`           // m
	SpeedOfSound    float64 `yaml:"speed_of_sound" json:"speed_of_sound"`       // m/s
}

// StandardAtmosphere returns the reference model used by the presets.
func StandardAtmosphere() Atmosphere {
	return Atmosphere{SeaLevelDensity: 1.225, ScaleHeight: 8500, SpeedOfSound: 340}
}

// Density returns air density at altitude h.
func (a Atmosphere) Density(h float64) float64 {
	return a.SeaLevelDensity * math.Exp(-h/a.ScaleHeight)
}

// DensityRatio returns rho(h)/rho0.
func (a Atmosphere) DensityRatio(h float64) float64 {
	return math.Exp(-h / a.ScaleHeight)
}

// Mach converts airspeed to a Mach number at altitude h.
func (a Atmosphere) Mach(speed, h float64) float64 {
	return speed / a.SpeedOfSound
}

// DynamicPressure returns 0.5*rho*V^2 at altitude h.
func (a Atmosphere) DynamicPressure(speed, h float64) float64 {
	return 0.5 * a.Density(h) * speed * speed
}
