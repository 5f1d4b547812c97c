package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestDefault(t *testing.T) {
	conf := Default()
	test.That(t, conf.RootName, test.ShouldEqual, "panda_link0")
	test.That(t, conf.TipName, test.ShouldEqual, "panda_link7")
	test.That(t, conf.PublishRate, test.ShouldEqual, 100.)
	test.That(t, conf.Flags(), test.ShouldResemble, AllEnabled())
	test.That(t, conf.Period(), test.ShouldEqual, 10*time.Millisecond)
	test.That(t, conf.GravityVector(), test.ShouldResemble, r3.Vector{Z: -9.81})
	test.That(t, conf.ModelHandleName(), test.ShouldEqual, "panda_model")
	test.That(t, conf.StateHandleName(), test.ShouldEqual, "panda_robot")
	test.That(t, conf.Validate("kinstate"), test.ShouldBeNil)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"tip_name": "panda_link8", "publish_rate": 50, "mass_calculation_needed": false, "gravity": [0, -9.81, 0]}`
	test.That(t, os.WriteFile(path, []byte(data), 0o600), test.ShouldBeNil)

	conf, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.RootName, test.ShouldEqual, DefaultRootName)
	test.That(t, conf.TipName, test.ShouldEqual, "panda_link8")
	test.That(t, conf.PublishRate, test.ShouldEqual, 50.)
	test.That(t, conf.Flags(), test.ShouldResemble, Flags{CoriolisEnabled: true, GravityEnabled: true, StateEnabled: true})
	test.That(t, conf.GravityVector(), test.ShouldResemble, r3.Vector{Y: -9.81})

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, os.WriteFile(path, []byte("{"), 0o600), test.ShouldBeNil)
	_, err = Read(path)
	test.That(t, err, test.ShouldNotBeNil)

	// A misspelled key is an error rather than a silently ignored setting.
	test.That(t, os.WriteFile(path, []byte(`{"mass_calculaton_needed": false}`), 0o600), test.ShouldBeNil)
	_, err = Read(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mass_calculaton_needed")
}

func TestFromAttributes(t *testing.T) {
	conf, err := FromAttributes(map[string]interface{}{
		"arm_id":             "fr3",
		"root_name":          "fr3_link0",
		"tip_name":           "fr3_link8",
		"publish_rate":       "250",
		"robot_state_needed": false,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.PublishRate, test.ShouldEqual, 250.)
	test.That(t, conf.RobotStateNeeded, test.ShouldBeFalse)
	test.That(t, conf.MassCalculationNeeded, test.ShouldBeTrue)
	test.That(t, conf.ModelHandleName(), test.ShouldEqual, "fr3_model")

	_, err = FromAttributes(map[string]interface{}{"tip": "typo"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "tip")
}

func TestValidate(t *testing.T) {
	conf := &Config{RootName: "", TipName: "", PublishRate: math.NaN(), Gravity: []float64{1}}
	err := conf.Validate("kinstate")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidConfig), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "root_name")
	test.That(t, err.Error(), test.ShouldContainSubstring, "tip_name")
	test.That(t, err.Error(), test.ShouldContainSubstring, "publish_rate")
	test.That(t, err.Error(), test.ShouldContainSubstring, "gravity")

	conf = Default()
	conf.TipName = conf.RootName
	err = conf.Validate("kinstate")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must differ")

	conf = Default()
	conf.PublishRate = -1
	test.That(t, conf.Validate("kinstate"), test.ShouldNotBeNil)
	conf.PublishRate = math.Inf(1)
	test.That(t, conf.Validate("kinstate"), test.ShouldNotBeNil)
}
