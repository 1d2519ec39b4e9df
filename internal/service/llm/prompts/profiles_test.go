package prompts

import (
	"strings"
	"testing"
)

func TestLoad_EmbeddedProfiles(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		task            Task
		wantInstruction bool
		wantTemp        float64
		wantTopP        float64
		wantTopK        int
		wantSearch      bool
	}{
		{task: TaskChat, wantInstruction: true, wantTemp: 0.45, wantTopP: 0.9, wantTopK: 40},
		{task: TaskChatSearch, wantSearch: true},
		{task: TaskDraft, wantInstruction: true, wantTemp: 0.3, wantTopP: 0.9, wantTopK: 40, wantSearch: true},
		{task: TaskTranscribe, wantInstruction: true},
		{task: TaskPolish, wantInstruction: true, wantTemp: 0.5, wantTopP: 0.9, wantTopK: 50},
		{task: TaskResearch, wantInstruction: true, wantTemp: 0.2, wantTopP: 0.9, wantTopK: 40, wantSearch: true},
		{task: TaskAnalyze, wantInstruction: true, wantTemp: 0.3, wantTopP: 0.8, wantTopK: 40, wantSearch: true},
		{task: TaskRephrase, wantInstruction: true, wantTemp: 0.3, wantTopP: 0.9, wantTopK: 40},
	}

	for _, tt := range tests {
		t.Run(string(tt.task), func(t *testing.T) {
			p := reg.Get(tt.task)
			if (p.Instruction != "") != tt.wantInstruction {
				t.Errorf("instruction present = %v, want %v", p.Instruction != "", tt.wantInstruction)
			}
			if p.WebSearch != tt.wantSearch {
				t.Errorf("WebSearch = %v, want %v", p.WebSearch, tt.wantSearch)
			}

			s := p.Sampling()
			if tt.wantTemp == 0 {
				if s.Temperature != nil || s.TopP != nil || s.TopK != nil {
					t.Errorf("expected provider-default sampling, got %+v", s)
				}
				return
			}
			if s.Temperature == nil || *s.Temperature != tt.wantTemp {
				t.Errorf("Temperature = %v, want %v", s.Temperature, tt.wantTemp)
			}
			if s.TopP == nil || *s.TopP != tt.wantTopP {
				t.Errorf("TopP = %v, want %v", s.TopP, tt.wantTopP)
			}
			if s.TopK == nil || *s.TopK != tt.wantTopK {
				t.Errorf("TopK = %v, want %v", s.TopK, tt.wantTopK)
			}
		})
	}
}

func TestProfile_RenderPrompt(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, err := reg.Get(TaskAnalyze).RenderPrompt("client says {{ landlord }} refused")
	if err != nil {
		t.Fatalf("RenderPrompt() error = %v", err)
	}
	want := "Analyze the following legal consultation transcript and provide a structured legal summary:\n\n" +
		"**Transcript:**\nclient says {{ landlord }} refused\n\n" +
		"Please provide a comprehensive legal analysis following the specified format."
	if got != want {
		t.Errorf("RenderPrompt() =\n%q\nwant\n%q", got, want)
	}

	plain, err := reg.Get(TaskResearch).RenderPrompt("doctrine of res judicata")
	if err != nil || plain != "doctrine of res judicata" {
		t.Errorf("untemplated task should pass input through, got %q, %v", plain, err)
	}
}

func TestParse_MissingTask(t *testing.T) {
	_, err := Parse([]byte("chat:\n  instruction: hi\n"))
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing task error, got %v", err)
	}
}
