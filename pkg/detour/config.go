package detour

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RouteDetourConfig is the effective set of detection thresholds for a single
// route, resolved from the engine defaults plus any per-route overrides.
type RouteDetourConfig struct {
	// Distance from the nearest shape variant before a vehicle counts as off route
	OffRouteThresholdMeters float64
	// Perpendicular tolerance when testing whether two paths share a corridor
	CorridorWidthMeters float64
	// Fraction of points (0..1) that must fall inside the corridor, both ways
	PathOverlapPercentage float64
	// Minimum breadcrumbs before an excursion is considered at all
	MinOffRouteBreadcrumbs int
	// Minimum time off route before an excursion is considered
	MinOffRouteDuration time.Duration
	// How long an uncorroborated path waits for a second vehicle
	PendingPathExpiry time.Duration
	// How long a suspected-tier detour survives without being seen again
	SuspectedDetourExpiry time.Duration
	// Stop match radius for the route context enricher
	StopMatchRadiusMeters float64
	MaxAffectedStops      int
}

// EngineConfig holds the engine-global knobs plus the default route thresholds
type EngineConfig struct {
	Defaults RouteDetourConfig

	// Confidence score boundaries for the Likely / HighConfidence tiers
	LikelyThreshold         int
	HighConfidenceThreshold int

	// Breadcrumb decimation distance applied before overlap testing
	SimplifyMinDistanceMeters float64

	// How long a cleared detour stays visible before archival
	ClearedRetention time.Duration
	// Absolute cap on detour lifetime regardless of tier
	MaxRetention time.Duration

	HistoryLimit int
}

var defaultEngineConfig = EngineConfig{
	Defaults: RouteDetourConfig{
		OffRouteThresholdMeters: 100.0,
		CorridorWidthMeters:     150.0,
		PathOverlapPercentage:   0.6,
		MinOffRouteBreadcrumbs:  3,
		MinOffRouteDuration:     90 * time.Second,
		PendingPathExpiry:       30 * time.Minute,
		SuspectedDetourExpiry:   1 * time.Hour,
		StopMatchRadiusMeters:   200.0,
		MaxAffectedStops:        8,
	},

	LikelyThreshold:         70,
	HighConfidenceThreshold: 85,

	SimplifyMinDistanceMeters: 20.0,

	ClearedRetention: 5 * time.Minute,
	MaxRetention:     24 * time.Hour,

	HistoryLimit: 200,
}

// GetEngineConfig returns the engine configuration from environment variables
// or defaults
func GetEngineConfig() EngineConfig {
	config := defaultEngineConfig

	if val := os.Getenv("BTP_DETOUR_OFF_ROUTE_METERS"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.Defaults.OffRouteThresholdMeters = parsed
		}
	}

	if val := os.Getenv("BTP_DETOUR_CORRIDOR_WIDTH_METERS"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.Defaults.CorridorWidthMeters = parsed
		}
	}

	if val := os.Getenv("BTP_DETOUR_PATH_OVERLAP_PERCENTAGE"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.Defaults.PathOverlapPercentage = parsed
		}
	}

	if val := os.Getenv("BTP_DETOUR_PENDING_PATH_EXPIRY"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			config.Defaults.PendingPathExpiry = parsed
		}
	}

	if val := os.Getenv("BTP_DETOUR_SUSPECTED_EXPIRY"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			config.Defaults.SuspectedDetourExpiry = parsed
		}
	}

	if val := os.Getenv("BTP_DETOUR_MAX_RETENTION"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			config.MaxRetention = parsed
		}
	}

	if val := os.Getenv("BTP_DETOUR_HISTORY_LIMIT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.HistoryLimit = parsed
		}
	}

	return config
}

// ConfigDuration is a time.Duration that unmarshals from the usual "90s" /
// "2m" notation in YAML.
type ConfigDuration time.Duration

func (d *ConfigDuration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}

	*d = ConfigDuration(parsed)

	return nil
}

// RouteConfigOverride is a partial per-route override of the default
// thresholds. Overrides are usually keyed by a base route identifier ("2") and
// apply to its lettered branches ("2A", "2B") as well.
type RouteConfigOverride struct {
	OffRouteThresholdMeters *float64        `yaml:"offRouteThresholdMeters" validate:"omitempty,gt=0"`
	CorridorWidthMeters     *float64        `yaml:"corridorWidthMeters" validate:"omitempty,gt=0"`
	PathOverlapPercentage   *float64        `yaml:"pathOverlapPercentage" validate:"omitempty,gt=0,lte=1"`
	MinOffRouteBreadcrumbs  *int            `yaml:"minOffRouteBreadcrumbs" validate:"omitempty,gt=0"`
	MinOffRouteDuration     *ConfigDuration `yaml:"minOffRouteDuration"`
	PendingPathExpiry       *ConfigDuration `yaml:"pendingPathExpiry"`
	SuspectedDetourExpiry   *ConfigDuration `yaml:"suspectedDetourExpiry"`
	StopMatchRadiusMeters   *float64        `yaml:"stopMatchRadiusMeters" validate:"omitempty,gt=0"`
	MaxAffectedStops        *int            `yaml:"maxAffectedStops" validate:"omitempty,gt=0"`
}

// LoadRouteOverrides reads a YAML map of route identifier to threshold
// overrides
func LoadRouteOverrides(path string) (map[string]RouteConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides map[string]RouteConfigOverride
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}

	v := validator.New()
	for _, override := range overrides {
		if err := v.Struct(override); err != nil {
			return nil, err
		}
	}

	return overrides, nil
}

var branchRouteRegex = regexp.MustCompile(`^([0-9]+)[A-Za-z]+$`)

// baseRouteID maps a lettered branch route ("2A") onto its base route ("2").
// Routes without a letter suffix map onto themselves.
func baseRouteID(routeID string) string {
	if match := branchRouteRegex.FindStringSubmatch(routeID); match != nil {
		return match[1]
	}

	return routeID
}

// ResolveRouteConfig merges the engine defaults with any override for the
// route. A branch route inherits its base route's override unless a
// branch-specific override exists, in which case the branch values win.
func (e *Engine) ResolveRouteConfig(routeID string) RouteDetourConfig {
	config := e.Config.Defaults

	if base := baseRouteID(routeID); base != routeID {
		if override, exists := e.Overrides[base]; exists {
			applyRouteOverride(&config, override)
		}
	}

	if override, exists := e.Overrides[routeID]; exists {
		applyRouteOverride(&config, override)
	}

	return config
}

func applyRouteOverride(config *RouteDetourConfig, override RouteConfigOverride) {
	if override.OffRouteThresholdMeters != nil {
		config.OffRouteThresholdMeters = *override.OffRouteThresholdMeters
	}
	if override.CorridorWidthMeters != nil {
		config.CorridorWidthMeters = *override.CorridorWidthMeters
	}
	if override.PathOverlapPercentage != nil {
		config.PathOverlapPercentage = *override.PathOverlapPercentage
	}
	if override.MinOffRouteBreadcrumbs != nil {
		config.MinOffRouteBreadcrumbs = *override.MinOffRouteBreadcrumbs
	}
	if override.MinOffRouteDuration != nil {
		config.MinOffRouteDuration = time.Duration(*override.MinOffRouteDuration)
	}
	if override.PendingPathExpiry != nil {
		config.PendingPathExpiry = time.Duration(*override.PendingPathExpiry)
	}
	if override.SuspectedDetourExpiry != nil {
		config.SuspectedDetourExpiry = time.Duration(*override.SuspectedDetourExpiry)
	}
	if override.StopMatchRadiusMeters != nil {
		config.StopMatchRadiusMeters = *override.StopMatchRadiusMeters
	}
	if override.MaxAffectedStops != nil {
		config.MaxAffectedStops = *override.MaxAffectedStops
	}
}
