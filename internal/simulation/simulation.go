// Package simulation is the risk simulation engine: given the active trial's
// context and user-supplied scenario parameters, it produces an executive
// summary, an aggregate risk score, and per-category scenarios with
// mitigations.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"

	"trialsight/internal/audit"
	"trialsight/internal/genai"
	"trialsight/internal/logging"
	"trialsight/internal/types"
)

// thinkingBudget caps reasoning tokens for simulation calls. Simulation gets
// a deeper budget than analysis; it reasons over hypotheticals.
const thinkingBudget = 2048

var simulationSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"executiveSummary": {Type: "string", Description: "A concise, high-level summary of the simulation outcome."},
		"overallRiskScore": {
			Type:        "integer",
			Description: "Calculated aggregate risk probability (0-100).",
			Minimum:     genai.Float(0),
			Maximum:     genai.Float(100),
		},
		"scenarios": {
			Type: "array",
			Items: &genai.Schema{
				Type: "object",
				Properties: map[string]*genai.Schema{
					"category":           {Type: "string", Description: "Category of risk (e.g., Operations, Safety, Recruitment)."},
					"riskLevel":          {Type: "string", Enum: []string{"Low", "Medium", "High", "Critical"}},
					"description":        {Type: "string", Description: "Detailed description of the specific risk scenario."},
					"mitigationStrategy": {Type: "string", Description: "Actionable step to mitigate this risk."},
				},
				Required: []string{"category", "riskLevel", "description", "mitigationStrategy"},
			},
		},
	},
	Required: []string{"executiveSummary", "overallRiskScore", "scenarios"},
}

// Scenario is one simulated risk with its mitigation.
type Scenario struct {
	Category           string          `json:"category"`
	RiskLevel          types.RiskLevel `json:"riskLevel"`
	Description        string          `json:"description"`
	MitigationStrategy string          `json:"mitigationStrategy"`
}

// Result is a full simulation outcome.
type Result struct {
	ExecutiveSummary string     `json:"executiveSummary"`
	OverallRiskScore int        `json:"overallRiskScore"`
	Scenarios        []Scenario `json:"scenarios"`
}

// Engine runs risk simulations.
type Engine struct {
	client genai.Client
	audit  *audit.Log
}

// New wires the engine.
func New(client genai.Client, log *audit.Log) *Engine {
	return &Engine{client: client, audit: log}
}

// Simulate runs one simulation for the trial. The audit entry is recorded up
// front: the invocation itself is the audited event, not its outcome. On
// failure the result is nil and the caller keeps whatever it had before.
func (e *Engine) Simulate(ctx context.Context, trial types.Trial, parameters string) (*Result, error) {
	e.audit.Record(types.ActorUser, audit.ActionSimulation,
		fmt.Sprintf("Ran Risk Simulation for %s", trial.ProtocolID), trial.ProtocolID)

	prompt := fmt.Sprintf(`You are a Clinical Risk Simulator Engine.

Based on the following Clinical Trial Context:
%s

And these specific additional details/parameters provided by the user:
%s

Perform a rigorous simulation analysis.
1. Predict the impact on recruitment, safety, and data integrity.
2. Assign risk levels (Low, Medium, High, Critical).
3. Provide concrete mitigation strategies.`, trial.AIContext, parameters)

	raw, err := e.client.CompleteStructured(ctx, prompt, simulationSchema, genai.TierDeep,
		genai.WithThinkingBudget(thinkingBudget))
	if err != nil {
		logging.SimulationError("simulation for %s failed: %v", trial.ProtocolID, err)
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding simulation result: %w", err)
	}
	logging.Simulation("simulated %s: score=%d, %d scenario(s)",
		trial.ProtocolID, result.OverallRiskScore, len(result.Scenarios))
	return &result, nil
}
