// Package catalog holds the read-only trial records a session operates on.
// Records come from the built-in fixtures and, optionally, from a YAML file
// named in the configuration. The catalog never changes after construction.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"trialsight/internal/logging"
	"trialsight/internal/types"
)

// Catalog is an immutable collection of trials keyed by id.
type Catalog struct {
	trials map[string]types.Trial
	order  []string
}

// New returns a catalog containing the built-in trials.
func New() *Catalog {
	c := &Catalog{trials: make(map[string]types.Trial)}
	for _, t := range builtinTrials() {
		c.add(t)
	}
	return c
}

// Load returns a catalog containing the built-in trials plus any records from
// the YAML file at path. A record whose id matches a built-in replaces it.
// An empty path is the same as New.
func Load(path string) (*Catalog, error) {
	c := New()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trial catalog %s: %w", path, err)
	}
	var file struct {
		Trials []types.Trial `yaml:"trials"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing trial catalog %s: %w", path, err)
	}
	for _, t := range file.Trials {
		if t.ID == "" {
			return nil, fmt.Errorf("trial catalog %s: record %q has no id", path, t.Name)
		}
		c.add(t)
	}
	logging.Boot("Loaded %d trial(s) from %s", len(file.Trials), path)
	return c, nil
}

func (c *Catalog) add(t types.Trial) {
	if _, ok := c.trials[t.ID]; !ok {
		c.order = append(c.order, t.ID)
	}
	c.trials[t.ID] = t
}

// Get returns the trial with the given id.
func (c *Catalog) Get(id string) (types.Trial, bool) {
	t, ok := c.trials[id]
	return t, ok
}

// List returns all trials in insertion order.
func (c *Catalog) List() []types.Trial {
	out := make([]types.Trial, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.trials[id])
	}
	return out
}

// First returns the first trial in the catalog. A catalog is never empty:
// the built-ins are always present.
func (c *Catalog) First() types.Trial {
	return c.trials[c.order[0]]
}

// IDs returns the set of trial ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	sort.Strings(ids)
	return ids
}

func builtinTrials() []types.Trial {
	return []types.Trial{
		{
			ID:                 "trial_1",
			ProtocolID:         "633765",
			Name:               "SECURE",
			Phase:              "III",
			Description:        "Secondary Prevention of Cardiovascular Disease in the Elderly",
			Investigator:       "Dr. Valentin Fuster",
			Status:             types.TrialRecruiting,
			TargetRecruitment:  2514,
			CurrentRecruitment: 1450,
			RecruitmentData: []types.RecruitmentSite{
				{Label: "Spain", Actual: 450, Target: 500},
				{Label: "Italy", Actual: 320, Target: 400},
				{Label: "Germany", Actual: 210, Target: 350},
				{Label: "Poland", Actual: 180, Target: 200},
				{Label: "Hungary", Actual: 150, Target: 150},
				{Label: "France", Actual: 90, Target: 150},
				{Label: "Czech", Actual: 80, Target: 100},
			},
			EndpointData: []types.EndpointCount{
				{Name: "CV Death", Value: 12, Color: "#ef4444"},
				{Name: "Non-fatal MI", Value: 28, Color: "#f97316"},
				{Name: "Ischemic Stroke", Value: 15, Color: "#eab308"},
				{Name: "Revasc", Value: 45, Color: "#3b82f6"},
			},
			AdherenceData: []types.AdherencePoint{
				{Timepoint: "M6", ArmA: 78, ArmB: 62},
				{Timepoint: "M12", ArmA: 75, ArmB: 58},
				{Timepoint: "M18", ArmA: 74, ArmB: 55},
				{Timepoint: "M24", ArmA: 72, ArmB: 50},
			},
			AIContext: "Protocol: SECURE (Secondary Prevention of CVD in Elderly). Drug: Polypill (Aspirin/Atorvastatin/Ramipril) vs Usual Care. Pop: >65yo, Post-MI. Key Risks: Hypotension, Renal Dysfunction, Bleeding. Adherence Measure: Morisky-8.",
		},
		{
			ID:                 "trial_2",
			ProtocolID:         "NCT07286578",
			Name:               "AF-PREVENT",
			Phase:              "II",
			Description:        "Impact of Early Ablation in Atrial Fibrillation - Spain Cohort",
			Investigator:       "Dr. Maria Gonzalez",
			Status:             types.TrialRecruiting,
			TargetRecruitment:  300,
			CurrentRecruitment: 45,
			RecruitmentData: []types.RecruitmentSite{
				{Label: "Madrid", Actual: 20, Target: 100},
				{Label: "Barcelona", Actual: 15, Target: 100},
				{Label: "Valencia", Actual: 10, Target: 100},
			},
			EndpointData: []types.EndpointCount{
				{Name: "AF Recurrence", Value: 5, Color: "#ef4444"},
				{Name: "Bleeding", Value: 2, Color: "#f97316"},
				{Name: "Stroke", Value: 0, Color: "#eab308"},
			},
			AdherenceData: []types.AdherencePoint{
				{Timepoint: "M1", ArmA: 98, ArmB: 95},
				{Timepoint: "M3", ArmA: 95, ArmB: 90},
				{Timepoint: "M6", ArmA: 92, ArmB: 85},
			},
			AIContext: "Protocol: AF-PREVENT (NCT07286578). Intervention: Cryoablation vs Antiarrhythmic Drugs. Pop: Paroxysmal AF, Naive. Key Risks: Tamponade, Pulmonary Vein Stenosis. Primary Endpoint: Freedom from Atrial Arrhythmia >30s.",
		},
	}
}
