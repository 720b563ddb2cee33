package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const plannerPrompt = `You are a planner for a threat intelligence analyst.
Break the objective below into a short ordered plan of concrete sub-tasks.
Each sub-task must be answerable with the available tools: IP reputation
lookup, geolocation lookup, malware hash analysis, and threat scoring.
Output ONLY the numbered steps, one per line, nothing else.

Objective: %s`

// planExecuteAgent asks the LLM for an ordered plan, then runs each step
// through the inner agent sequentially, feeding prior results forward.
type planExecuteAgent struct {
	llm      llms.Model
	executor Agent
	logger   *zap.Logger
}

func (a *planExecuteAgent) Invoke(ctx context.Context, input string) (string, error) {
	planText, err := llms.GenerateFromSinglePrompt(ctx, a.llm, fmt.Sprintf(plannerPrompt, input))
	if err != nil {
		return "", fmt.Errorf("plan generation: %w", err)
	}

	steps := parsePlan(planText)
	if len(steps) == 0 {
		// No usable plan; fall back to a single pass over the objective.
		return a.executor.Invoke(ctx, input)
	}
	a.logger.Debug("plan generated", zap.Int("steps", len(steps)))

	var b strings.Builder
	for i, step := range steps {
		task := step
		if b.Len() > 0 {
			task = fmt.Sprintf("%s\n\nContext from previous steps:\n%s", step, b.String())
		}
		out, err := a.executor.Invoke(ctx, task)
		if err != nil {
			return "", fmt.Errorf("plan step %d (%s): %w", i+1, step, err)
		}
		fmt.Fprintf(&b, "Step %d: %s\nResult: %s\n", i+1, step, out)
	}
	return b.String(), nil
}

// parsePlan extracts numbered or bulleted steps from the planner output.
func parsePlan(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789")
		line = strings.TrimLeft(line, ".)- \t")
		if line == "" {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}
