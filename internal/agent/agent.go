// Package agent assembles the threat-intelligence tools and the LLM into
// invocable agents. The reasoning and tool-calling loop itself belongs to
// the langchaingo engine; this package only wires configuration, tools,
// and execution strategy together.
package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	lctools "github.com/tmc/langchaingo/tools"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/config"
)

// maxIterations bounds the engine's reason/act loop per invocation.
const maxIterations = 8

// Strategy selects how the engine drives the tool set.
type Strategy string

const (
	// StrategyReAct interleaves model reasoning with tool calls until the
	// model emits a final answer.
	StrategyReAct Strategy = "react"

	// StrategyPlanExecute first asks the model for an ordered plan, then
	// executes each step sequentially against the tool set.
	StrategyPlanExecute Strategy = "plan-execute"
)

// ParseStrategy validates a strategy name; empty defaults to ReAct.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyReAct:
		return StrategyReAct, nil
	case StrategyPlanExecute:
		return StrategyPlanExecute, nil
	default:
		return "", fmt.Errorf("unknown agent strategy %q", s)
	}
}

// Agent is an invocable reasoning loop over the tool set.
type Agent interface {
	Invoke(ctx context.Context, input string) (string, error)
}

// Factory constructs agents bound to one LLM and one tool set.
type Factory struct {
	llm    llms.Model
	tools  []lctools.Tool
	logger *zap.Logger
}

// NewFactory builds the Gemini-backed LLM from cfg and binds it to the
// given tools. The LLM client is shared by every agent the factory makes.
func NewFactory(ctx context.Context, cfg *config.Config, ts []lctools.Tool, logger *zap.Logger) (*Factory, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.GoogleAPIKey),
		googleai.WithDefaultModel(cfg.LLMModel),
		googleai.WithDefaultTemperature(cfg.LLMTemperature),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return &Factory{llm: llm, tools: ts, logger: logger}, nil
}

// New returns an agent for the given strategy.
func (f *Factory) New(strategy Strategy) (Agent, error) {
	switch strategy {
	case StrategyPlanExecute:
		return f.PlanExecute()
	default:
		return f.ReAct()
	}
}

// ReAct returns a single-pass tool-calling agent.
func (f *Factory) ReAct() (Agent, error) {
	executor, err := agents.Initialize(
		f.llm, f.tools, agents.ZeroShotReactDescription,
		agents.WithMaxIterations(maxIterations),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize react agent: %w", err)
	}
	return &reactAgent{executor: executor}, nil
}

// PlanExecute returns a plan-then-execute agent: one planning call, then
// each plan step run through a ReAct executor in order.
func (f *Factory) PlanExecute() (Agent, error) {
	inner, err := f.ReAct()
	if err != nil {
		return nil, err
	}
	return &planExecuteAgent{llm: f.llm, executor: inner, logger: f.logger}, nil
}

// reactAgent runs the engine's executor chain once per invocation.
type reactAgent struct {
	executor *agents.Executor
}

func (a *reactAgent) Invoke(ctx context.Context, input string) (string, error) {
	out, err := chains.Run(ctx, a.executor, input)
	if err != nil {
		return "", fmt.Errorf("agent execution: %w", err)
	}
	return out, nil
}
