package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/scriptmesh/core"
)

// Func adapts an ordinary function to the core.Engine interface. Handy for
// tests and for wrapping generation logic that does not need its own type.
type Func func(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error)

// Generate implements core.Engine.
func (f Func) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
	return f(ctx, req)
}

var _ core.Engine = (Func)(nil)

// SystemPrompt frames the model as a screenwriter and pins the JSON output
// contract the adapters parse.
const SystemPrompt = `You are an experienced screenwriter. Your task is to generate movie scripts
following standard screenplay format. Focus on creating engaging dialogue, clear action
descriptions, and proper scene formatting. Include scene headings (sluglines), action
descriptions, character names, dialogue, and parentheticals where appropriate.

Respond with a single JSON object and nothing else, using this shape:
{
  "script": "<full screenplay text>",
  "scenes": [{"sceneNumber": 1, "startTime": "00:00", "endTime": "00:30", "location": "...", "shotType": "...", "cameraMovement": "..."}],
  "settings": [{"id": "setting-1", "name": "...", "description": "...", "imagePrompt": "..."}],
  "characters": [{"name": "...", "description": "...", "ageRange": "...", "imagePrompt": "..."}],
  "transformedScenes": [{"sceneNumber": 1, "prompt": "...", "charactersInScene": ["..."], "settingId": "setting-1", "duration": 30}]
}`

// UserPrompt renders a GenerateRequest as the user turn sent to the model.
// Session context, when present, is appended so the model can stay consistent
// with earlier scripts in the same session.
func UserPrompt(req core.GenerateRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate a movie script titled %q.\n", req.Title)
	if len(req.Tags) > 0 {
		fmt.Fprintf(&sb, "Genre tags: %s.\n", strings.Join(req.Tags, ", "))
	}
	if req.Idea != "" {
		fmt.Fprintf(&sb, "Story idea: %s\n", req.Idea)
	}
	if req.Lyrics != "" {
		fmt.Fprintf(&sb, "Incorporate these lyrics:\n%s\n", req.Lyrics)
	}
	if req.Duration > 0 {
		fmt.Fprintf(&sb, "Target duration: %d seconds.\n", req.Duration)
	}
	fmt.Fprintf(&sb, "Output mode: %s.\n", req.OutputMode)

	if req.Context != nil {
		if len(req.Context.Themes) > 0 {
			fmt.Fprintf(&sb, "\nRecurring session themes: %s.\n", strings.Join(req.Context.Themes, ", "))
		}
		for _, prev := range req.Context.PreviousScripts {
			fmt.Fprintf(&sb, "Previously in this session: %q: %s\n", prev.Title, prev.Summary)
		}
	}

	return sb.String()
}

// ParseResult decodes the model's JSON reply into a GenerateResult. Models
// occasionally wrap JSON in markdown fences despite instructions, so fences
// are stripped before decoding. Decode failures are terminal: retrying the
// parse of the same text cannot succeed, and the runner treats non-retryable
// engine errors as final.
func ParseResult(text string) (*core.GenerateResult, error) {
	trimmed := stripFences(strings.TrimSpace(text))

	var result core.GenerateResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, core.NewEngineError(fmt.Errorf("decode generation output: %w", err), false)
	}
	if result.Script == "" {
		return nil, core.NewEngineError(fmt.Errorf("generation output contains no script"), false)
	}

	return &result, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
