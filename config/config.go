// Package config provides parameter loading and access for the stigmergy engine.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumSpecies is the number of trail channels and agent species.
const NumSpecies = 3

// Upper bounds applied by computeDerived.
const (
	maxGridSize   = 4096
	maxSpeed      = 64  // cells per tick
	maxModulation = 100 // modulation range bound
)

// Config holds the full parameter bundle consumed by the engine.
type Config struct {
	Seed       int64             `yaml:"seed"`
	Screen     ScreenConfig      `yaml:"screen"`
	Grid       GridConfig        `yaml:"grid"`
	Population PopulationConfig  `yaml:"population"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Universal  SpeciesParams     `yaml:"universal"`
	Species    []SpeciesOverride `yaml:"species"`
	Model      ModelConfig       `yaml:"model"`
	Audio      AudioConfig       `yaml:"audio"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds viewer settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds trail field dimensions and field-rate dynamics.
type GridConfig struct {
	Size          int `yaml:"size"`           // Side length N of every channel
	DiffusionFreq int `yaml:"diffusion_freq"` // Ticks between diffusion passes
	Workers       int `yaml:"workers"`        // Diffusion workers (0 = GOMAXPROCS)
}

// PopulationConfig holds agent population parameters.
type PopulationConfig struct {
	Count  int    `yaml:"count"`
	Layout string `yaml:"layout"` // random, center, ring, noise
}

// SimulationConfig holds global simulation knobs.
type SimulationConfig struct {
	Speed float64 `yaml:"speed"` // Global speed multiplier applied to every agent
}

// SpeciesParams is the fully resolved parameter set for one species.
type SpeciesParams struct {
	Physical  PhysicalParams  `yaml:"physical"`
	Semiotic  SemioticParams  `yaml:"semiotic"`
	Temporal  TemporalParams  `yaml:"temporal"`
	Resonance ResonanceParams `yaml:"resonance"`
}

// PhysicalParams governs movement and sensing.
type PhysicalParams struct {
	Speed          float64 `yaml:"speed"`
	TurnSpeed      float64 `yaml:"turn_speed"`      // radians per tick
	SensorAngle    float64 `yaml:"sensor_angle"`    // radians off the heading
	SensorDistance float64 `yaml:"sensor_distance"` // cells
}

// SemioticParams governs trace deposition and the species' trail channel.
type SemioticParams struct {
	Deposit         float64 `yaml:"deposit"`
	DecayRate       float64 `yaml:"decay_rate"`
	TrailSaturation float64 `yaml:"trail_saturation"`
	FadeStrength    float64 `yaml:"fade_strength"` // soft ceiling strength above 100
}

// TemporalParams governs rhythmic perturbation.
type TemporalParams struct {
	ChaosInterval        int     `yaml:"chaos_interval"` // 0 disables
	ChaosStrength        float64 `yaml:"chaos_strength"`
	OscillationAmplitude float64 `yaml:"oscillation_amplitude"`
	OscillationRate      float64 `yaml:"oscillation_rate"`
}

// ResonanceParams governs how sensed trails turn into steering signal.
// Negative values repel, positive attract.
type ResonanceParams struct {
	AttractionStrength float64     `yaml:"attraction_strength"`
	RepulsionStrength  float64     `yaml:"repulsion_strength"`
	CrossSpecies       bool        `yaml:"cross_species"`
	UseMatrix          bool        `yaml:"use_matrix"`
	Matrix             [][]float64 `yaml:"matrix"` // [self][other], NumSpecies x NumSpecies
}

// SpeciesOverride replaces whole sub-groups of the universal parameters.
// A nil group inherits the universal group wholesale.
type SpeciesOverride struct {
	Name      string           `yaml:"name"`
	Physical  *PhysicalParams  `yaml:"physical,omitempty"`
	Semiotic  *SemioticParams  `yaml:"semiotic,omitempty"`
	Temporal  *TemporalParams  `yaml:"temporal,omitempty"`
	Resonance *ResonanceParams `yaml:"resonance,omitempty"`
	Audio     *AudioMapping    `yaml:"audio,omitempty"`
}

// ModelKind selects the behavioral model.
type ModelKind string

const (
	ModelClassical  ModelKind = "classical"  // M1
	ModelContextual ModelKind = "contextual" // M2
	ModelQuantum    ModelKind = "quantum"    // M3
)

// Valid reports whether k names a known model.
func (k ModelKind) Valid() bool {
	switch k {
	case ModelClassical, ModelContextual, ModelQuantum:
		return true
	}
	return false
}

// ModelConfig holds the active model and the parameters of each model.
type ModelConfig struct {
	Kind       ModelKind        `yaml:"kind"`
	Contextual ContextualParams `yaml:"contextual"`
	Quantum    QuantumParams    `yaml:"quantum"`
}

// ContextualParams configures the explore/exploit model.
type ContextualParams struct {
	HighThreshold    float64 `yaml:"high_threshold"`
	LowThreshold     float64 `yaml:"low_threshold"`
	ExplorationNoise float64 `yaml:"exploration_noise"`
}

// QuantumParams configures the amplitude model.
type QuantumParams struct {
	PhaseRotationRate float64 `yaml:"phase_rotation_rate"`
	AmplitudeCoupling float64 `yaml:"amplitude_coupling"`
	ContextThreshold  float64 `yaml:"context_threshold"` // below this local density, trail age is ignored
	PhaseNoise        float64 `yaml:"phase_noise"`
}

// AudioConfig holds the audio to behavior mapping.
type AudioConfig struct {
	GlobalInfluence float64          `yaml:"global_influence"`
	Mapping         AudioMapping     `yaml:"mapping"`
	Clamp           ModulationClamp  `yaml:"clamp"`
	Beat            BeatConfig       `yaml:"beat"`
	Consonance      ConsonanceConfig `yaml:"consonance"`
	Smoother        SmootherConfig   `yaml:"smoother"`
	Analyzer        AnalyzerConfig   `yaml:"analyzer"`
}

// FeatureWeight is one weighted, curve-shaped audio contribution.
type FeatureWeight struct {
	Feature string  `yaml:"feature"`
	Weight  float64 `yaml:"weight"`
	Curve   float64 `yaml:"curve"` // power-law exponent; 0 means linear
}

// AudioMapping lists the contributions to each modulation output.
type AudioMapping struct {
	MoveSpeed       []FeatureWeight `yaml:"move_speed"`
	TurnSpeed       []FeatureWeight `yaml:"turn_speed"`
	TurnRandomness  []FeatureWeight `yaml:"turn_randomness"`
	SensorAngle     []FeatureWeight `yaml:"sensor_angle"`
	SensorDistance  []FeatureWeight `yaml:"sensor_distance"`
	DepositRate     []FeatureWeight `yaml:"deposit_rate"`
	TrailAttraction []FeatureWeight `yaml:"trail_attraction"`
	ExplorationBias []FeatureWeight `yaml:"exploration_bias"`
}

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// ModulationClamp holds the safe range of every modulation output.
type ModulationClamp struct {
	MoveSpeed       Range `yaml:"move_speed"`
	TurnSpeed       Range `yaml:"turn_speed"`
	TurnRandomness  Range `yaml:"turn_randomness"`
	SensorAngle     Range `yaml:"sensor_angle"`
	SensorDistance  Range `yaml:"sensor_distance"`
	DepositRate     Range `yaml:"deposit_rate"`
	TrailAttraction Range `yaml:"trail_attraction"`
	ExplorationBias Range `yaml:"exploration_bias"`
}

// BeatConfig configures the decaying beat impulse tracker.
type BeatConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Decay         float64 `yaml:"decay"` // per-tick retention factor in (0,1)
	SpeedWeight   float64 `yaml:"speed_weight"`
	DepositWeight float64 `yaml:"deposit_weight"`
}

// ConsonanceConfig configures the consonance/dissonance estimator.
type ConsonanceConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RandomnessWeight  float64 `yaml:"randomness_weight"`
	SensorAngleWeight float64 `yaml:"sensor_angle_weight"`
}

// SmootherConfig configures the micro/meso/macro temporal smoother.
type SmootherConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Micro             float64 `yaml:"micro"` // EMA alpha per tick
	Meso              float64 `yaml:"meso"`
	Macro             float64 `yaml:"macro"`
	SpeedWeight       float64 `yaml:"speed_weight"`
	ExplorationWeight float64 `yaml:"exploration_weight"`
}

// AnalyzerConfig configures the reference FFT analyzer.
type AnalyzerConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	FrameSize  int     `yaml:"frame_size"`
	BassMaxHz  float64 `yaml:"bass_max_hz"`
	MidMaxHz   float64 `yaml:"mid_max_hz"`
	BeatK      float64 `yaml:"beat_k"` // flux must exceed mean + k*std
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow       int     `yaml:"stats_window"` // ticks per stats window
	PerfWindow        int     `yaml:"perf_window"`
	CoverageThreshold float64 `yaml:"coverage_threshold"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Species [NumSpecies]SpeciesParams // resolved per-species parameters
	Mapping [NumSpecies]AudioMapping  // resolved per-species audio mapping
	Names   [NumSpecies]string
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("config: marshaling for clone: %v", err))
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("config: unmarshaling clone: %v", err))
	}
	out.computeDerived()
	return out
}

// ApplyPatch merges a partial YAML document onto a copy of c.
// Fields absent from the patch keep their current value. On error c is untouched.
func (c *Config) ApplyPatch(patch []byte) (*Config, error) {
	out := c.Clone()
	var doc yaml.Node
	if err := yaml.Unmarshal(patch, &doc); err != nil {
		return nil, fmt.Errorf("parsing parameter patch: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == 0 {
		out.computeDerived()
		return out, nil
	}

	species := takeKey(root, "species")
	if err := root.Decode(out); err != nil {
		return nil, fmt.Errorf("parsing parameter patch: %w", err)
	}
	if species != nil {
		if err := out.mergeSpecies(species); err != nil {
			return nil, fmt.Errorf("parsing parameter patch: %w", err)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.computeDerived()
	return out, nil
}

// takeKey removes key from mapping node m and returns its value node.
func takeKey(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			v := m.Content[i+1]
			m.Content = append(m.Content[:i:i], m.Content[i+2:]...)
			return v
		}
	}
	return nil
}

// mergeSpecies decodes a species sequence item by item onto the existing
// overrides. Items past the current length are appended. A group patched on
// a species without its own override starts from the universal group.
func (c *Config) mergeSpecies(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		c.Species = nil
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("species: expected a sequence")
	}
	for i, item := range n.Content {
		for len(c.Species) <= i {
			c.Species = append(c.Species, SpeciesOverride{})
		}
		o := &c.Species[i]
		if item.Kind == yaml.MappingNode {
			c.seedGroups(o, item)
		}
		if err := item.Decode(o); err != nil {
			return fmt.Errorf("species %d: %w", i, err)
		}
	}
	return nil
}

// seedGroups gives o a copy of each universal group that item patches but o
// does not override yet.
func (c *Config) seedGroups(o *SpeciesOverride, item *yaml.Node) {
	for i := 0; i+1 < len(item.Content); i += 2 {
		switch item.Content[i].Value {
		case "physical":
			if o.Physical == nil {
				g := c.Universal.Physical
				o.Physical = &g
			}
		case "semiotic":
			if o.Semiotic == nil {
				g := c.Universal.Semiotic
				o.Semiotic = &g
			}
		case "temporal":
			if o.Temporal == nil {
				g := c.Universal.Temporal
				o.Temporal = &g
			}
		case "resonance":
			if o.Resonance == nil {
				g := c.Universal.Resonance
				g.Matrix = copyMatrix(g.Matrix)
				o.Resonance = &g
			}
		case "audio":
			if o.Audio == nil {
				g := c.Audio.Mapping
				o.Audio = &g
			}
		}
	}
}

// Validate rejects values that cannot be clamped into meaning.
func (c *Config) Validate() error {
	if !c.Model.Kind.Valid() {
		return fmt.Errorf("unknown model kind %q", c.Model.Kind)
	}
	switch c.Population.Layout {
	case "", "random", "center", "ring", "noise":
	default:
		return fmt.Errorf("unknown population layout %q", c.Population.Layout)
	}
	if len(c.Species) > NumSpecies {
		return fmt.Errorf("species overrides: got %d, at most %d allowed", len(c.Species), NumSpecies)
	}
	return nil
}

// computeDerived clamps values into their safe ranges and resolves species overrides.
func (c *Config) computeDerived() {
	if c.Grid.Size < 8 {
		c.Grid.Size = 8
	}
	if c.Grid.Size > maxGridSize {
		c.Grid.Size = maxGridSize
	}
	if c.Grid.DiffusionFreq < 1 {
		c.Grid.DiffusionFreq = 1
	}
	if c.Population.Count < 0 {
		c.Population.Count = 0
	}
	if c.Population.Layout == "" {
		c.Population.Layout = "random"
	}
	c.Simulation.Speed = clamp(c.Simulation.Speed, 0, maxSpeed)
	c.Audio.GlobalInfluence = clamp(c.Audio.GlobalInfluence, 0, 1)
	sanitizeClamp(&c.Audio.Clamp)

	cm := &c.Model.Contextual
	if cm.LowThreshold > cm.HighThreshold {
		cm.LowThreshold, cm.HighThreshold = cm.HighThreshold, cm.LowThreshold
	}
	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}

	sanitizeSpecies(&c.Universal)
	for i := 0; i < NumSpecies; i++ {
		c.Derived.Species[i] = c.resolveSpecies(i)
		c.Derived.Mapping[i] = c.Audio.Mapping
		c.Derived.Names[i] = fmt.Sprintf("species_%d", i)
		if i < len(c.Species) {
			o := c.Species[i]
			if o.Audio != nil {
				c.Derived.Mapping[i] = *o.Audio
			}
			if o.Name != "" {
				c.Derived.Names[i] = o.Name
			}
		}
	}
}

// resolveSpecies applies species i's overrides on top of the universal groups.
func (c *Config) resolveSpecies(i int) SpeciesParams {
	p := c.Universal
	p.Resonance.Matrix = copyMatrix(c.Universal.Resonance.Matrix)
	if i < len(c.Species) {
		o := c.Species[i]
		if o.Physical != nil {
			p.Physical = *o.Physical
		}
		if o.Semiotic != nil {
			p.Semiotic = *o.Semiotic
		}
		if o.Temporal != nil {
			p.Temporal = *o.Temporal
		}
		if o.Resonance != nil {
			p.Resonance = *o.Resonance
			p.Resonance.Matrix = copyMatrix(o.Resonance.Matrix)
		}
	}
	sanitizeSpecies(&p)
	return p
}

// sanitizeSpecies clamps resonance values into [-2, 2] and pads the matrix.
func sanitizeSpecies(p *SpeciesParams) {
	r := &p.Resonance
	r.AttractionStrength = clamp(r.AttractionStrength, -2, 2)
	r.RepulsionStrength = clamp(r.RepulsionStrength, -2, 2)
	m := make([][]float64, NumSpecies)
	for a := 0; a < NumSpecies; a++ {
		m[a] = make([]float64, NumSpecies)
		for b := 0; b < NumSpecies; b++ {
			v := 0.0
			if a == b {
				v = 1
			}
			if a < len(r.Matrix) && b < len(r.Matrix[a]) {
				v = r.Matrix[a][b]
			}
			m[a][b] = clamp(v, -2, 2)
		}
	}
	r.Matrix = m

	ph := &p.Physical
	ph.Speed = clamp(ph.Speed, 0, maxSpeed)
	ph.TurnSpeed = clamp(ph.TurnSpeed, 0, 2*math.Pi)
	ph.SensorAngle = clamp(ph.SensorAngle, 0, math.Pi)
	ph.SensorDistance = clamp(ph.SensorDistance, 0, maxGridSize)

	se := &p.Semiotic
	if !(se.TrailSaturation > 0) || se.TrailSaturation > math.MaxFloat32 {
		se.TrailSaturation = math.MaxFloat32
	}
	se.Deposit = clamp(se.Deposit, 0, math.MaxFloat32)
	se.DecayRate = clamp(se.DecayRate, 0, 1)
	se.FadeStrength = clamp(se.FadeStrength, 0, 1)

	te := &p.Temporal
	if te.ChaosInterval < 0 {
		te.ChaosInterval = 0
	}
	te.ChaosStrength = clamp(te.ChaosStrength, 0, 2)
	te.OscillationAmplitude = clamp(te.OscillationAmplitude, -math.Pi, math.Pi)
	te.OscillationRate = clamp(te.OscillationRate, -math.Pi, math.Pi)
}

// sanitizeClamp keeps every modulation range finite and ordered.
func sanitizeClamp(m *ModulationClamp) {
	for _, r := range []*Range{
		&m.MoveSpeed, &m.TurnSpeed, &m.TurnRandomness, &m.SensorAngle,
		&m.SensorDistance, &m.DepositRate, &m.TrailAttraction, &m.ExplorationBias,
	} {
		r.Min = clamp(r.Min, -maxModulation, maxModulation)
		r.Max = clamp(r.Max, -maxModulation, maxModulation)
		if r.Min > r.Max {
			r.Min, r.Max = r.Max, r.Min
		}
	}
}

func copyMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = append([]float64(nil), m[i]...)
	}
	return out
}

// clamp limits v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
