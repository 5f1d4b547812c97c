// Package config holds the startup configuration of the robot state layer.
package config

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// Defaults used when a field is not configured.
const (
	DefaultArmID       = "panda"
	DefaultRootName    = "panda_link0"
	DefaultTipName     = "panda_link7"
	DefaultPublishRate = 100.0
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config describes the chain to solve, which derived terms to compute and how often to publish
// them. Field names match the parameter names of the hardware layer.
type Config struct {
	// RobotDescription is a path to a URDF file.
	RobotDescription string `json:"robot_description,omitempty"`
	ArmID            string `json:"arm_id"`
	RootName         string `json:"root_name"`
	TipName          string `json:"tip_name"`
	// PublishRate is in Hz.
	PublishRate float64 `json:"publish_rate"`

	MassCalculationNeeded     bool `json:"mass_calculation_needed"`
	CoriolisCalculationNeeded bool `json:"coriolis_calculation_needed"`
	GravityCalculationNeeded  bool `json:"gravity_calculation_needed"`
	RobotStateNeeded          bool `json:"robot_state_needed"`

	// Gravity is the gravity vector in root frame coordinates, in m/s^2. Unset means standard
	// gravity along -z.
	Gravity []float64 `json:"gravity,omitempty"`
}

// Flags are the per term enable switches, fixed at startup.
type Flags struct {
	MassEnabled     bool
	CoriolisEnabled bool
	GravityEnabled  bool
	StateEnabled    bool
}

// AllEnabled returns flags with every term enabled.
func AllEnabled() Flags {
	return Flags{MassEnabled: true, CoriolisEnabled: true, GravityEnabled: true, StateEnabled: true}
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		ArmID:                     DefaultArmID,
		RootName:                  DefaultRootName,
		TipName:                   DefaultTipName,
		PublishRate:               DefaultPublishRate,
		MassCalculationNeeded:     true,
		CoriolisCalculationNeeded: true,
		GravityCalculationNeeded:  true,
		RobotStateNeeded:          true,
	}
}

// Read loads a JSON config file over the defaults. Unknown keys are rejected, as in
// FromAttributes.
func Read(path string) (*Config, error) {
	//nolint:gosec
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config file")
	}
	defer goutils.UncheckedErrorFunc(file.Close)

	conf := Default()
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(conf); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	return conf, nil
}

// FromAttributes decodes a loosely typed attribute map, as found in a larger JSON document, over
// the defaults. Unknown keys are rejected.
func FromAttributes(attrs map[string]interface{}) (*Config, error) {
	conf := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           conf,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating decoder")
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "cannot decode attributes")
	}
	return conf, nil
}

// Validate ensures all parts of the config are valid. Every problem is reported.
func (conf *Config) Validate(path string) error {
	var errs error
	if conf.RootName == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "root_name"))
	}
	if conf.TipName == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "tip_name"))
	}
	if conf.RootName != "" && conf.RootName == conf.TipName {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("root_name and tip_name must differ, both are %q", conf.RootName)))
	}
	if math.IsNaN(conf.PublishRate) || math.IsInf(conf.PublishRate, 0) || conf.PublishRate <= 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("publish_rate must be a positive number, got %v", conf.PublishRate)))
	}
	if conf.Gravity != nil && len(conf.Gravity) != 3 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("gravity must have 3 components, got %d", len(conf.Gravity))))
	}
	if errs != nil {
		return errors.Wrap(multierr.Combine(ErrInvalidConfig, errs), "config validation failed")
	}
	return nil
}

// Flags returns the term enable switches.
func (conf *Config) Flags() Flags {
	return Flags{
		MassEnabled:     conf.MassCalculationNeeded,
		CoriolisEnabled: conf.CoriolisCalculationNeeded,
		GravityEnabled:  conf.GravityCalculationNeeded,
		StateEnabled:    conf.RobotStateNeeded,
	}
}

// Period returns the minimum interval between publications.
func (conf *Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / conf.PublishRate)
}

// GravityVector returns the configured gravity, or standard gravity along -z when unset.
func (conf *Config) GravityVector() r3.Vector {
	if len(conf.Gravity) != 3 {
		return r3.Vector{Z: -9.81}
	}
	return r3.Vector{X: conf.Gravity[0], Y: conf.Gravity[1], Z: conf.Gravity[2]}
}

// ModelHandleName is the name the model handle is registered under.
func (conf *Config) ModelHandleName() string {
	return conf.armID() + "_model"
}

// StateHandleName is the name the state handle is registered under.
func (conf *Config) StateHandleName() string {
	return conf.armID() + "_robot"
}

func (conf *Config) armID() string {
	if conf.ArmID == "" {
		return DefaultArmID
	}
	return conf.ArmID
}
