package plans

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// Unlimited marks a resource without a cap.
const Unlimited int64 = -1

var planIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Plan describes one billing plan tenants can be created on. The
// catalog only carries metadata; enforcement of limits and feature
// gates is the consuming application's concern.
type Plan struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Public      bool             `yaml:"public"`
	TrialDays   int              `yaml:"trial_days"`
	Limits      map[string]int64 `yaml:"limits"`
	Features    []string         `yaml:"features"`
}

// Limit returns the cap for a named resource. Resources absent from
// the plan report zero, not Unlimited: a plan grants only what it
// names.
func (p Plan) Limit(resource string) int64 {
	return p.Limits[resource]
}

// HasFeature reports whether the plan enables the named feature flag.
func (p Plan) HasFeature(name string) bool {
	return slices.Contains(p.Features, name)
}

// Catalog is an immutable, ordered set of plans, usually parsed once at
// startup and shared between the provisioning service and the admin
// surface.
type Catalog struct {
	plans []Plan
	byID  map[string]int
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// Parse reads a catalog from YAML:
//
//	plans:
//	  - id: free
//	    name: Free
//	    public: true
//	    limits:
//	      members: 3
//	      projects: 1
//	  - id: pro
//	    name: Pro
//	    public: true
//	    trial_days: 14
//	    limits:
//	      members: 25
//	      projects: -1
//	    features: [custom_domain]
//
// Plan order in the file is preserved. IDs must be unique lowercase
// identifiers; a -1 limit means Unlimited.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrParseFailed, err)
	}
	if len(file.Plans) == 0 {
		return nil, errors.Join(ErrParseFailed, errors.New("catalog contains no plans"))
	}

	byID := make(map[string]int, len(file.Plans))
	for i, p := range file.Plans {
		if !planIDPattern.MatchString(p.ID) {
			return nil, errors.Join(ErrInvalidPlanID, fmt.Errorf("plan %d: id %q", i, p.ID))
		}
		if _, exists := byID[p.ID]; exists {
			return nil, errors.Join(ErrDuplicatePlan, errors.New("plan id "+p.ID))
		}
		byID[p.ID] = i
	}
	return &Catalog{plans: file.Plans, byID: byID}, nil
}

// Load reads and parses a catalog file from the given filesystem.
func Load(fsys fs.FS, path string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Join(ErrParseFailed, err)
	}
	return Parse(data)
}

// Has reports whether a plan with the given ID exists. It satisfies
// the plan check the provisioning service performs before creating a
// tenant.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Get returns the plan with the given ID.
func (c *Catalog) Get(id string) (Plan, error) {
	i, ok := c.byID[id]
	if !ok {
		return Plan{}, errors.Join(ErrPlanNotFound, errors.New("plan id "+id))
	}
	return c.plans[i], nil
}

// All returns every plan in file order.
func (c *Catalog) All() []Plan {
	return slices.Clone(c.plans)
}

// Public returns the plans available for self-service signup, in file
// order. Non-public plans exist for grandfathered and negotiated deals
// and can only be assigned through the admin surface.
func (c *Catalog) Public() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		if p.Public {
			out = append(out, p)
		}
	}
	return out
}

// IDs returns all plan IDs in file order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.ID
	}
	return out
}
