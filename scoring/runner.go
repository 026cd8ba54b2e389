package scoring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/engine"
	"github.com/datar-psa/rageval/report"
)

// Phase identifies one scoring procedure.
type Phase string

const (
	PhaseRetrieval  Phase = "retrieval"
	PhaseGeneration Phase = "generation"
	PhaseRagas      Phase = "ragas"
	PhaseAggregate  Phase = "aggregate"
)

// Request carries the inputs of one scoring phase across the runner
// boundary. The prompt override is threaded explicitly so subprocesses see
// the same instruction the orchestrator is evaluating.
type Request struct {
	Phase       Phase
	FixturePath string
	LLMProvider string
	// RunLabel keys the aggregate report (aggregate phase only)
	RunLabel string
	// SystemPrompt and VariantLabel retarget the engine for this phase
	SystemPrompt string
	VariantLabel string
}

// Runner executes one scoring phase to completion. Implementations must
// return a *ProcessError (or wrap one) when the phase itself failed, so the
// orchestrator can abort the whole run.
type Runner interface {
	Run(ctx context.Context, req Request) error
}

// ProcessError reports a scoring phase failure. For subprocess runners it
// carries the exit code of the failed process.
type ProcessError struct {
	Phase    Phase
	ExitCode int
	Cause    error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("scoring phase %s failed with exit code %d: %v", e.Phase, e.ExitCode, e.Cause)
}

func (e *ProcessError) Unwrap() error { return e.Cause }

// ExecRunner invokes scoring phases as external processes, preserving the
// process-boundary contract: fixture path in, fixed-location score file out,
// non-zero exit mapped to ProcessError.
type ExecRunner struct {
	// Binary is the executable to invoke; defaults to the current binary
	Binary string
	// ConfigPath, when set, is forwarded as --config
	ConfigPath string
	// Logger defaults to a nop logger
	Logger *zap.Logger
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, req Request) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	binary := r.Binary
	if binary == "" {
		binary = os.Args[0]
	}

	args, err := CommandArgs(req)
	if err != nil {
		return err
	}
	if r.ConfigPath != "" {
		args = append(args, "--config", r.ConfigPath)
	}

	logger.Info("running scoring phase",
		zap.String("phase", string(req.Phase)),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ProcessError{Phase: req.Phase, ExitCode: exitCode, Cause: err}
	}
	return nil
}

// CommandArgs builds the CLI argv for one scoring request. The aggregate
// subcommand only combines persisted sub-scores, so the prompt override
// flags are omitted there; its flag set does not accept them.
func CommandArgs(req Request) ([]string, error) {
	var args []string
	switch req.Phase {
	case PhaseRetrieval:
		args = []string{"eval-retrieval", "--test-file", req.FixturePath}
	case PhaseGeneration:
		args = []string{"eval-generation", "--test-file", req.FixturePath, "--llm-provider", req.LLMProvider}
	case PhaseRagas:
		args = []string{"eval-ragas", "--test-file", req.FixturePath, "--llm-provider", req.LLMProvider}
	case PhaseAggregate:
		args = []string{"aggregate"}
		if req.RunLabel != "" {
			args = append(args, "--save-name", req.RunLabel)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("unknown scoring phase: %s", req.Phase)
	}

	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}
	if req.VariantLabel != "" {
		args = append(args, "--variant", req.VariantLabel)
	}
	return args, nil
}

// Sequential runs scoring phases in-process against a base Options
// template. Failures are still wrapped in ProcessError so orchestrator
// behavior is identical in both modes.
type Sequential struct {
	// Base supplies index, embedding and results configuration; fixture,
	// provider and prompt fields are filled from each Request
	Base Options
}

// Run implements Runner.
func (r *Sequential) Run(ctx context.Context, req Request) error {
	opts := r.Base
	opts.FixturePath = req.FixturePath
	if req.LLMProvider != "" {
		opts.LLMProvider = req.LLMProvider
	}
	if req.SystemPrompt != "" {
		opts.Prompt = &engine.PromptOverride{
			Instruction:  req.SystemPrompt,
			VariantLabel: req.VariantLabel,
		}
	}

	var err error
	switch req.Phase {
	case PhaseRetrieval:
		_, err = EvalRetrieval(ctx, opts)
	case PhaseGeneration:
		_, err = EvalGeneration(ctx, opts)
	case PhaseRagas:
		_, err = EvalRagas(ctx, opts)
	case PhaseAggregate:
		_, err = report.NewAggregator(opts.ResultsDir, opts.Logger).Run(req.RunLabel)
	default:
		return fmt.Errorf("unknown scoring phase: %s", req.Phase)
	}

	if err != nil {
		return &ProcessError{Phase: req.Phase, ExitCode: 1, Cause: err}
	}
	return nil
}
