package config

import "github.com/paulmach/orb"

// StoreConfig selects the network line store backend
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// ZonesConfig describes the operating-area boundary collection
type ZonesConfig struct {
	Path         string            `yaml:"path" validate:"required"`
	NameProperty string            `yaml:"nameProperty" validate:"required"`
	ShortCodes   map[string]string `yaml:"shortCodes" validate:"required,min=1,dive,keys,required,endkeys,min=1,max=2"`
}

// Point is a planar coordinate pair in the network's projection
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Orb converts the point for geometry operations
func (p Point) Orb() orb.Point { return orb.Point{p.X, p.Y} }

// LongDistanceConfig forces an area letter for agencies carrying a marker
type LongDistanceConfig struct {
	Marker string `yaml:"marker"`
	Letter string `yaml:"letter" validate:"omitempty,min=1,max=2"`
}

// NamingConfig contains line identifier synthesis parameters
type NamingConfig struct {
	RenameModes    []string           `yaml:"renameModes" validate:"required,min=1"`
	Reference      Point              `yaml:"reference"`
	LongDistance   LongDistanceConfig `yaml:"longDistance"`
	FallbackLetter string             `yaml:"fallbackLetter" validate:"omitempty,min=1,max=2"`
	// CounterStart is nil when unset so an explicit 0 is kept
	CounterStart         *int   `yaml:"counterStart" validate:"omitempty,gte=0"`
	PadWidth             int    `yaml:"padWidth" validate:"gte=0,lte=8"`
	DescriptionMaxLength int    `yaml:"descriptionMaxLength" validate:"gte=0"`
	DisambiguationSuffix string `yaml:"disambiguationSuffix" validate:"omitempty,len=1,alpha"`
}

// Counter returns the counter start, 99 when unset
func (n NamingConfig) Counter() int {
	if n.CounterStart == nil {
		return defaultCounterStart
	}
	return *n.CounterStart
}

// ModesConfig contains mode reassignment parameters
type ModesConfig struct {
	SourceMode          string         `yaml:"sourceMode"`
	TargetMode          string         `yaml:"targetMode"`
	StopDistance        float64        `yaml:"stopDistance" validate:"gte=0"`
	VehicleIDs          map[string]int `yaml:"vehicleIds"`
	LongDistanceAgency  string         `yaml:"longDistanceAgency"`
	LongDistanceVehicle int            `yaml:"longDistanceVehicle" validate:"gte=0"`
}

// GTFSConfig contains GTFS pre-filter configuration
type GTFSConfig struct {
	Path             string `yaml:"path"`
	ExcludedAgencyID string `yaml:"excludedAgencyId"`
	RouteTypes       []int  `yaml:"routeTypes" validate:"dive,gte=0"`
	Output           string `yaml:"output"`
	// CRS of the zone file, e.g. EPSG:3879. Stops are projected into it.
	CRS string `yaml:"crs"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Scenario represents a named network store
type Scenario struct {
	Name  string      `yaml:"name" validate:"required"`
	Store StoreConfig `yaml:"store" validate:"required"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Store     StoreConfig   `yaml:"store"`
	Scenarios []Scenario    `yaml:"scenarios"`
	Zones     ZonesConfig   `yaml:"zones" validate:"required"`
	Naming    NamingConfig  `yaml:"naming" validate:"required"`
	Modes     ModesConfig   `yaml:"modes"`
	GTFS      GTFSConfig    `yaml:"gtfs"`
	Logging   LoggingConfig `yaml:"logging"`
}
