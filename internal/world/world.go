// Package world provides the query surface the agent core consumes from the
// rest of the simulation: terrain, climate and weather sampling, great-circle
// distances, and the aggregate counters that drive crisis evaluation.
// Terrain, climate and weather are sampled from layered simplex noise so the
// whole surface is deterministic from the world seed.
package world

import (
	"math"
	"sync/atomic"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TerrainKind classifies a point on the surface.
type TerrainKind uint8

const (
	TerrainOcean TerrainKind = iota
	TerrainPlains
	TerrainForest
	TerrainDesert
	TerrainMountains
	TerrainTundra
)

// TerrainName returns a human-readable terrain name.
func TerrainName(t TerrainKind) string {
	switch t {
	case TerrainOcean:
		return "ocean"
	case TerrainPlains:
		return "plains"
	case TerrainForest:
		return "forest"
	case TerrainDesert:
		return "desert"
	case TerrainMountains:
		return "mountains"
	case TerrainTundra:
		return "tundra"
	default:
		return "unknown"
	}
}

// Climate holds the sampled climate at a point.
type Climate struct {
	Temperature float64 `json:"temperature"` // Celsius
	Humidity    float64 `json:"humidity"`    // 0.0–1.0
	UVLevel     float64 `json:"uv_level"`    // 0.0–1.0
	Elevation   float64 `json:"elevation"`   // 0.0–1.0 normalized
}

// WeatherKind is the current weather type at a point.
type WeatherKind uint8

const (
	WeatherClear WeatherKind = iota
	WeatherRain
	WeatherStorm
	WeatherSnow
)

// Weather holds the sampled weather at a point.
type Weather struct {
	Kind      WeatherKind `json:"kind"`
	Intensity float64     `json:"intensity"` // 0.0–1.0
}

// Aggregates are the population-level counters the crisis monitor reads.
type Aggregates struct {
	AgentCount      int     `json:"agent_count"`
	GlobalResources float64 `json:"global_resources"`
	ActiveConflicts int     `json:"active_conflicts"`
	WorldSize       float64 `json:"world_size"`
}

// World samples environmental state and tracks world-level counters.
// Sampling methods are pure and safe for concurrent reads; the counters are
// owned by the simulation thread.
type World struct {
	Size float64 // Abstract world size used for population density.

	elevNoise    opensimplex.Noise
	tempNoise    opensimplex.Noise
	humidNoise   opensimplex.Noise
	weatherNoise opensimplex.Noise

	globalResources atomic.Uint64 // resource units ×1000
	activeConflicts atomic.Int64
}

// New creates a world sampled deterministically from seed.
func New(seed int64, size float64) *World {
	return &World{
		Size:         size,
		elevNoise:    opensimplex.NewNormalized(seed),
		tempNoise:    opensimplex.NewNormalized(seed + 1),
		humidNoise:   opensimplex.NewNormalized(seed + 2),
		weatherNoise: opensimplex.NewNormalized(seed + 3),
	}
}

// GetElevationAt samples normalized elevation in [0, 1].
func (w *World) GetElevationAt(lon, lat float64) float64 {
	return octaveNoise(w.elevNoise, lon, lat, 4, 0.08, 0.5)
}

// GetSlopeAt approximates terrain slope from nearby elevation samples.
func (w *World) GetSlopeAt(lon, lat float64) float64 {
	const step = 0.1
	here := w.GetElevationAt(lon, lat)
	dx := w.GetElevationAt(lon+step, lat) - here
	dy := w.GetElevationAt(lon, lat+step) - here
	return math.Sqrt(dx*dx+dy*dy) / step
}

// GetTerrainAt classifies the surface at a point from elevation and climate.
func (w *World) GetTerrainAt(lon, lat float64) TerrainKind {
	elev := w.GetElevationAt(lon, lat)
	if elev < 0.25 {
		return TerrainOcean
	}
	if elev > 0.72 {
		return TerrainMountains
	}

	c := w.GetClimateAt(lon, lat)
	switch {
	case c.Temperature < -5:
		return TerrainTundra
	case c.Temperature > 28 && c.Humidity < 0.3:
		return TerrainDesert
	case c.Humidity > 0.55:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// GetClimateAt samples the climate at a point. Temperature falls with latitude
// and elevation; UV rises toward the equator and with elevation.
func (w *World) GetClimateAt(lon, lat float64) Climate {
	elev := w.GetElevationAt(lon, lat)
	latFactor := math.Cos(lat * math.Pi / 180)

	base := octaveNoise(w.tempNoise, lon, lat, 3, 0.05, 0.5)
	temp := -10 + latFactor*40 + (base-0.5)*10 - elev*15
	humidity := octaveNoise(w.humidNoise, lon, lat, 3, 0.06, 0.5)
	uv := clamp01(latFactor*0.8 + elev*0.3)

	return Climate{
		Temperature: temp,
		Humidity:    humidity,
		UVLevel:     uv,
		Elevation:   elev,
	}
}

// GetWeatherAt samples current weather at a point.
func (w *World) GetWeatherAt(lon, lat float64) Weather {
	v := octaveNoise(w.weatherNoise, lon, lat, 2, 0.12, 0.5)
	c := w.GetClimateAt(lon, lat)

	switch {
	case v > 0.85:
		return Weather{Kind: WeatherStorm, Intensity: clamp01((v - 0.85) / 0.15)}
	case v > 0.65 && c.Temperature <= 0:
		return Weather{Kind: WeatherSnow, Intensity: clamp01((v - 0.65) / 0.35)}
	case v > 0.65:
		return Weather{Kind: WeatherRain, Intensity: clamp01((v - 0.65) / 0.35)}
	default:
		return Weather{Kind: WeatherClear, Intensity: 0}
	}
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in km between two points.
// All proximity checks in the core go through this.
func Distance(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// SetGlobalResources records the current world resource total.
func (w *World) SetGlobalResources(units float64) {
	if units < 0 {
		units = 0
	}
	w.globalResources.Store(uint64(units * 1000))
}

// SetActiveConflicts records the current count of active conflicts.
func (w *World) SetActiveConflicts(n int) {
	w.activeConflicts.Store(int64(n))
}

// AggregatesFor returns the counters snapshot used by crisis evaluation.
func (w *World) AggregatesFor(agentCount int) Aggregates {
	return Aggregates{
		AgentCount:      agentCount,
		GlobalResources: float64(w.globalResources.Load()) / 1000,
		ActiveConflicts: int(w.activeConflicts.Load()),
		WorldSize:       w.Size,
	}
}

// octaveNoise layers noise octaves for a natural-looking field in [0, 1].
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	f := freq

	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*f, y*f) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		f *= 2
	}
	return clamp01(total / maxValue)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
