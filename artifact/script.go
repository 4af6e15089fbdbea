package artifact

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/scriptmesh/core"
)

// sceneBundle is the JSON shape of the scene breakdown data part.
type sceneBundle struct {
	ExtractedScenes   []core.Scene            `json:"extractedScenes"`
	TransformedScenes []core.TransformedScene `json:"transformedScenes"`
	Settings          []core.Setting          `json:"settings,omitempty"`
}

// NewScriptArtifact maps a raw engine result into the single artifact
// attached to a completed task. The artifact is named after the script
// title and bundles three parts: the script text, the script metadata
// as inline JSON, and the scene breakdown as inline JSON.
//
// Mapping failures are terminal for the task (the executor records them
// as Failed without retrying): a result that cannot be represented will
// not get better on a second attempt.
func NewScriptArtifact(result *core.GenerateResult, req core.GenerateRequest) (*core.Artifact, error) {
	if result == nil {
		return nil, core.NewValidationError("result", "engine returned no result")
	}
	if result.Script == "" {
		return nil, core.NewValidationError("script", "engine returned an empty script")
	}

	meta := core.ScriptMetadata{
		Title:       req.Title,
		GenreTags:   req.Tags,
		Duration:    req.Duration,
		TotalScenes: len(result.Scenes),
		Characters:  result.Characters,
	}

	metaPart, err := inlineJSON(meta)
	if err != nil {
		return nil, fmt.Errorf("encode script metadata: %w", err)
	}
	scenesPart, err := inlineJSON(sceneBundle{
		ExtractedScenes:   result.Scenes,
		TransformedScenes: result.TransformedScenes,
		Settings:          result.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encode scene breakdown: %w", err)
	}

	return &core.Artifact{
		Name:        req.Title,
		Description: fmt.Sprintf("Movie script for %s", req.Title),
		Parts: []core.Part{
			core.TextPart{Text: result.Script},
			metaPart,
			scenesPart,
		},
		Metadata: map[string]any{
			"genre_tags":   req.Tags,
			"total_scenes": len(result.Scenes),
			"duration":     req.Duration,
			"output_mode":  req.OutputMode,
		},
	}, nil
}

// inlineJSON marshals v and wraps it as a base64 inline data part.
func inlineJSON(v any) (core.InlineDataPart, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return core.InlineDataPart{}, err
	}
	return core.InlineDataPart{
		MimeType: "application/json",
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}
