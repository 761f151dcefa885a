// Package profile holds the prompt, model and cache-format settings that
// shape a summarization. Every field except the attribution headers feeds
// the cache version tag.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultProfile []byte

type Profile struct {
	Model         string   `yaml:"model"`
	ShadowModels  []string `yaml:"shadow_models"`
	CacheFormat   int      `yaml:"cache_format"`
	SystemMessage string   `yaml:"system_message"`
	Referer       string   `yaml:"referer"`
	Title         string   `yaml:"title"`
}

// Default returns the embedded profile.
func Default() Profile {
	p, err := parse(defaultProfile)
	if err != nil {
		panic(fmt.Sprintf("parse embedded profile: %v", err))
	}

	return p
}

// Load reads a YAML profile. Fields missing from the file keep their
// embedded defaults; environment variables in the file are expanded.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	p := Default()
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}

	if err = p.Validate(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

func parse(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}

	return p, p.Validate()
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Model) == "" {
		return errors.New("profile: model is empty")
	}
	if strings.TrimSpace(p.SystemMessage) == "" {
		return errors.New("profile: system message is empty")
	}
	if p.CacheFormat < 0 {
		return errors.New("profile: cache format must be >= 0")
	}
	for _, m := range p.ShadowModels {
		if strings.TrimSpace(m) == "" {
			return errors.New("profile: shadow model is empty")
		}
	}

	return nil
}
