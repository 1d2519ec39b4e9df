// Package prompts holds the instruction and sampling profile of each
// inference task, loaded from an embedded YAML file.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	domainllm "dharmabot/internal/domain/services/llm"
)

//go:embed tasks.yaml
var tasksYAML []byte

// Task names a gateway operation.
type Task string

const (
	TaskChat       Task = "chat"
	TaskChatSearch Task = "chat_search"
	TaskDraft      Task = "draft"
	TaskTranscribe Task = "transcribe"
	TaskPolish     Task = "polish"
	TaskResearch   Task = "research"
	TaskAnalyze    Task = "analyze"
	TaskRephrase   Task = "rephrase"
)

// AllTasks lists every task the registry must define.
var AllTasks = []Task{
	TaskChat, TaskChatSearch, TaskDraft, TaskTranscribe,
	TaskPolish, TaskResearch, TaskAnalyze, TaskRephrase,
}

// Profile is the request shape of one task.
type Profile struct {
	Instruction string   `yaml:"instruction"`
	Prompt      string   `yaml:"prompt"`
	Temperature *float64 `yaml:"temperature"`
	TopP        *float64 `yaml:"top_p"`
	TopK        *int     `yaml:"top_k"`
	WebSearch   bool     `yaml:"web_search"`

	prompt *template.Template
}

// Sampling converts the profile's sampling fields to request params.
func (p *Profile) Sampling() domainllm.SamplingParams {
	return domainllm.SamplingParams{
		Temperature: p.Temperature,
		TopP:        p.TopP,
		TopK:        p.TopK,
	}
}

// RenderPrompt wraps the user input in the task's prompt template. Tasks
// without a template send the input unchanged.
func (p *Profile) RenderPrompt(input string) (string, error) {
	if p.prompt == nil {
		return input, nil
	}
	var sb strings.Builder
	if err := p.prompt.Execute(&sb, input); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

// Registry maps tasks to profiles. It is read-only after Load.
type Registry struct {
	profiles map[Task]*Profile
}

// Load parses the embedded task file.
func Load() (*Registry, error) {
	return Parse(tasksYAML)
}

// Parse builds a registry from YAML and checks every task is present.
func Parse(data []byte) (*Registry, error) {
	var raw map[Task]*Profile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task profiles: %w", err)
	}

	for _, task := range AllTasks {
		profile, ok := raw[task]
		if !ok || profile == nil {
			return nil, fmt.Errorf("task profile %q is missing", task)
		}
		profile.Instruction = strings.TrimSpace(profile.Instruction)
		if profile.Prompt != "" {
			tmpl, err := template.New(string(task)).Parse(profile.Prompt)
			if err != nil {
				return nil, fmt.Errorf("task %q: invalid prompt template: %w", task, err)
			}
			profile.prompt = tmpl
		}
	}

	return &Registry{profiles: raw}, nil
}

// Get returns the profile for a task. Unknown tasks panic; the set is fixed
// and validated at load.
func (r *Registry) Get(task Task) *Profile {
	p, ok := r.profiles[task]
	if !ok {
		panic(fmt.Sprintf("prompts: unknown task %q", task))
	}
	return p
}
