package limits

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlPlan is the on-disk schema for a plan. Fields are explicit and
// validated on load; arbitrary shapes are rejected by the strict decoder.
type yamlPlan struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Limits      map[string]int64 `yaml:"limits"`
	Features    []string         `yaml:"features"`
	Public      bool             `yaml:"public"`
	TrialDays   int              `yaml:"trial_days"`
}

type yamlCatalog struct {
	Plans map[string]yamlPlan `yaml:"plans"`
}

// fileSource loads the plan catalog from a YAML file.
type fileSource struct {
	path string
}

// NewFileSource returns a Source that reads plans from the YAML file at path.
//
// Expected shape:
//
//	plans:
//	  free:
//	    name: Free
//	    limits:
//	      products: 50
//	      customers: 25
//	    features: []
//	  pro:
//	    name: Pro
//	    limits:
//	      products: -1
//	    features: [segmentation]
//	    trial_days: 14
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// Load reads and validates the plan catalog file.
func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var catalog yamlCatalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if len(catalog.Plans) == 0 {
		return nil, errors.Join(ErrFailedToLoadPlans, fmt.Errorf("no plans defined in %s", s.path))
	}

	plans := make(map[string]Plan, len(catalog.Plans))
	for id, yp := range catalog.Plans {
		plan := Plan{
			ID:          id,
			Name:        yp.Name,
			Description: yp.Description,
			Limits:      make(map[Resource]int64, len(yp.Limits)),
			Features:    make([]Feature, 0, len(yp.Features)),
			Public:      yp.Public,
			TrialDays:   yp.TrialDays,
		}
		if plan.Name == "" {
			plan.Name = id
		}
		for res, limit := range yp.Limits {
			plan.Limits[Resource(res)] = limit
		}
		for _, f := range yp.Features {
			plan.Features = append(plan.Features, Feature(f))
		}
		plans[id] = plan
	}

	return plans, nil
}
