package scoring

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/datar-psa/rageval/api"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    []string
		wantErr bool
	}{
		{
			name: "retrieval",
			req:  Request{Phase: PhaseRetrieval, FixturePath: "data/test_cases.json"},
			want: []string{"eval-retrieval", "--test-file", "data/test_cases.json"},
		},
		{
			name: "generation with provider",
			req:  Request{Phase: PhaseGeneration, FixturePath: "data/test_cases.json", LLMProvider: "groq"},
			want: []string{"eval-generation", "--test-file", "data/test_cases.json", "--llm-provider", "groq"},
		},
		{
			name: "ragas with prompt override",
			req: Request{
				Phase:        PhaseRagas,
				FixturePath:  "data/test_cases.json",
				LLMProvider:  "gemini",
				SystemPrompt: "Answer tersely.",
				VariantLabel: "prompt_v2",
			},
			want: []string{
				"eval-ragas", "--test-file", "data/test_cases.json", "--llm-provider", "gemini",
				"--system-prompt", "Answer tersely.", "--variant", "prompt_v2",
			},
		},
		{
			// The aggregate subcommand takes no prompt flags; a threaded
			// override must not leak into its argv
			name: "aggregate with run label and prompt override",
			req: Request{
				Phase:        PhaseAggregate,
				RunLabel:     "prompt_v2",
				SystemPrompt: "Answer tersely.",
				VariantLabel: "prompt_v2",
			},
			want: []string{"aggregate", "--save-name", "prompt_v2"},
		},
		{
			name: "aggregate without run label",
			req:  Request{Phase: PhaseAggregate},
			want: []string{"aggregate"},
		},
		{
			name:    "unknown phase",
			req:     Request{Phase: Phase("burninate")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CommandArgs(tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("args = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecRunner_ExitCodeMapped(t *testing.T) {
	runner := &ExecRunner{Binary: "/bin/false"}
	err := runner.Run(context.Background(), Request{Phase: PhaseRetrieval, FixturePath: "x.json"})
	if err == nil {
		t.Fatal("expected error")
	}
	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected *ProcessError, got %T", err)
	}
	if procErr.Phase != PhaseRetrieval {
		t.Errorf("phase = %s, want %s", procErr.Phase, PhaseRetrieval)
	}
	if procErr.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", procErr.ExitCode)
	}
}

func TestExecRunner_Success(t *testing.T) {
	runner := &ExecRunner{Binary: "/bin/true"}
	if err := runner.Run(context.Background(), Request{Phase: PhaseAggregate}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSequential_FailureWrapped(t *testing.T) {
	gen := &mockGenerator{err: errors.New("boom")}
	ix := &mockIndex{results: []api.SearchResult{{Content: "chunk"}}}

	fixture := writeFixture(t, []Case{
		{Question: "q", ExpectedKeywords: []string{"k"}},
	})

	runner := &Sequential{Base: Options{
		ResultsDir: t.TempDir(),
		Engine:     testEngine(gen, ix),
	}}
	err := runner.Run(context.Background(), Request{Phase: PhaseGeneration, FixturePath: fixture})
	if err == nil {
		t.Fatal("expected error")
	}
	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected *ProcessError, got %T", err)
	}
	if procErr.Phase != PhaseGeneration {
		t.Errorf("phase = %s, want %s", procErr.Phase, PhaseGeneration)
	}
}

func TestSequential_PromptOverrideThreaded(t *testing.T) {
	gen := &mockGenerator{response: "the keyword answer"}
	ix := &mockIndex{results: []api.SearchResult{{Content: "chunk"}}}

	fixture := writeFixture(t, []Case{
		{Question: "q", ExpectedKeywords: []string{"keyword"}},
	})

	runner := &Sequential{Base: Options{
		ResultsDir: t.TempDir(),
		Engine:     testEngine(gen, ix),
	}}
	err := runner.Run(context.Background(), Request{
		Phase:        PhaseGeneration,
		FixturePath:  fixture,
		SystemPrompt: "Answer like a pirate.",
		VariantLabel: "prompt_v3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, p := range gen.prompts {
		if strings.Contains(p, "Answer like a pirate.") {
			found = true
		}
	}
	if !found {
		t.Error("override instruction never reached the generator")
	}
}
