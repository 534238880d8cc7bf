package collect

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/make-ready-tech/oppintel/internal/config"
)

// StopPolicy holds the pagination stop heuristics for one target portal.
// These are best-effort guesses about APIs with no reliable total-count or
// cursor contract, so they are data, not control flow: thresholds can be
// tuned per portal without touching the collector.
type StopPolicy struct {
	PageSize int `yaml:"page_size"`
	// MaxPages guarantees termination even under API misbehavior.
	MaxPages int `yaml:"max_pages"`
	// MaxConsecutiveEmptyPages is the primary stop signal: consecutive pages
	// with zero records matching the filter.
	MaxConsecutiveEmptyPages int `yaml:"max_consecutive_empty_pages"`
	PageDelayMS              int `yaml:"page_delay_ms"`
}

// DefaultPolicy builds a StopPolicy from collector configuration.
func DefaultPolicy(cfg config.CollectorConfig) StopPolicy {
	return StopPolicy{
		PageSize:                 cfg.PageSize,
		MaxPages:                 cfg.MaxPages,
		MaxConsecutiveEmptyPages: cfg.MaxConsecutiveEmptyPages,
		PageDelayMS:              cfg.PageDelayMS,
	}
}

// Merge returns p with any non-zero fields of override applied.
func (p StopPolicy) Merge(override StopPolicy) StopPolicy {
	if override.PageSize > 0 {
		p.PageSize = override.PageSize
	}
	if override.MaxPages > 0 {
		p.MaxPages = override.MaxPages
	}
	if override.MaxConsecutiveEmptyPages > 0 {
		p.MaxConsecutiveEmptyPages = override.MaxConsecutiveEmptyPages
	}
	if override.PageDelayMS > 0 {
		p.PageDelayMS = override.PageDelayMS
	}
	return p
}

// LoadOverrides reads a YAML file mapping portal name to StopPolicy
// overrides. A missing path returns an empty map.
func LoadOverrides(path string) (map[string]StopPolicy, error) {
	if path == "" {
		return map[string]StopPolicy{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]StopPolicy{}, nil
		}
		return nil, eris.Wrapf(err, "collect: read policy file %s", path)
	}
	overrides := map[string]StopPolicy{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrapf(err, "collect: parse policy file %s", path)
	}
	return overrides, nil
}

// PolicyFor resolves the effective StopPolicy for a portal: config defaults
// merged with any file override for that portal name.
func PolicyFor(cfg config.CollectorConfig, portalName string) (StopPolicy, error) {
	policy := DefaultPolicy(cfg)
	overrides, err := LoadOverrides(cfg.PolicyFile)
	if err != nil {
		return StopPolicy{}, err
	}
	if o, ok := overrides[portalName]; ok {
		policy = policy.Merge(o)
	}
	return policy, nil
}
