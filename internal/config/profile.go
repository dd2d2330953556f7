package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses Go duration syntax ("300ms", "5s") from YAML. Bare
// integers are rejected; a unit-less timing value is always a mistake.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"300ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Profile holds the tunable thresholds and timings for the feedback engine.
// All fields are optional in the YAML file; zero values keep package defaults.
type Profile struct {
	Classifier struct {
		CriticalHeightRatio float64 `yaml:"critical_height_ratio"`
		SafeHeightRatio     float64 `yaml:"safe_height_ratio"`
		CenterFraction      float64 `yaml:"center_fraction"`
	} `yaml:"classifier"`

	Scheduler struct {
		SystemTTL       Duration `yaml:"system_ttl"`
		WarningThrottle Duration `yaml:"warning_throttle"`
	} `yaml:"scheduler"`

	Navigation struct {
		WaypointReachedMeters  float64  `yaml:"waypoint_reached_meters"`
		InstructionCooldown    Duration `yaml:"instruction_cooldown"`
		StraightReconfirmAfter Duration `yaml:"straight_reconfirm_after"`
		TickInterval           Duration `yaml:"tick_interval"`
	} `yaml:"navigation"`

	Safety struct {
		FrameInterval Duration `yaml:"frame_interval"`
	} `yaml:"safety"`
}

// LoadProfile reads a YAML tuning profile from path.
// A missing file is not an error; it returns an empty profile.
func LoadProfile(path string) (*Profile, error) {
	var p Profile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &p, nil
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

// Validate rejects values that would make the feedback engine misbehave.
func (p *Profile) Validate() error {
	c := p.Classifier
	if c.CriticalHeightRatio < 0 || c.CriticalHeightRatio > 1 {
		return fmt.Errorf("classifier.critical_height_ratio out of range: %v", c.CriticalHeightRatio)
	}
	if c.SafeHeightRatio < 0 || c.SafeHeightRatio > 1 {
		return fmt.Errorf("classifier.safe_height_ratio out of range: %v", c.SafeHeightRatio)
	}
	if c.SafeHeightRatio > 0 && c.CriticalHeightRatio > 0 && c.SafeHeightRatio >= c.CriticalHeightRatio {
		return fmt.Errorf("classifier.safe_height_ratio %v must be below critical_height_ratio %v",
			c.SafeHeightRatio, c.CriticalHeightRatio)
	}
	if c.CenterFraction < 0 || c.CenterFraction > 1 {
		return fmt.Errorf("classifier.center_fraction out of range: %v", c.CenterFraction)
	}
	if p.Navigation.WaypointReachedMeters < 0 {
		return fmt.Errorf("navigation.waypoint_reached_meters must not be negative")
	}
	return nil
}
