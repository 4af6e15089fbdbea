package core

import "context"

// Scene describes a scene extracted from the generated script, carrying
// the technical production details the original breakdown provides.
type Scene struct {
	SceneNumber      int               `json:"sceneNumber"`
	StartTime        string            `json:"startTime"` // MM:SS
	EndTime          string            `json:"endTime"`   // MM:SS
	ShotType         string            `json:"shotType,omitempty"`
	CameraMovement   string            `json:"cameraMovement,omitempty"`
	CameraEquipment  string            `json:"cameraEquipment,omitempty"`
	Location         string            `json:"location"`
	LightingSetup    map[string]any    `json:"lightingSetup,omitempty"`
	ColorPalette     []string          `json:"colorPalette,omitempty"`
	VisualReferences []string          `json:"visualReferences,omitempty"`
	CharacterActions map[string]string `json:"characterActions,omitempty"`
	TransitionType   string            `json:"transitionType,omitempty"`
	SpecialNotes     []string          `json:"specialNotes,omitempty"`
}

// TransformedScene is a scene reworked into a production-ready
// generation prompt referencing a setting and the characters in frame.
type TransformedScene struct {
	SceneNumber       int            `json:"sceneNumber"`
	Description       string         `json:"description,omitempty"`
	Prompt            string         `json:"prompt"`
	CharactersInScene []string       `json:"charactersInScene"`
	SettingID         string         `json:"settingId"`
	Duration          int            `json:"duration"`
	TechnicalDetails  map[string]any `json:"technicalDetails,omitempty"`
}

// Character describes a character appearing in the script.
type Character struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	AgeRange             string `json:"ageRange"`
	PerceivedGender      string `json:"perceivedGender,omitempty"`
	HeightBuild          string `json:"heightBuild,omitempty"`
	DistinctiveFeatures  string `json:"distinctiveFeatures,omitempty"`
	WardrobeDetails      string `json:"wardrobeDetails,omitempty"`
	MovementStyle        string `json:"movementStyle,omitempty"`
	KeyAccessories       string `json:"keyAccessories,omitempty"`
	SceneSpecificChanges string `json:"sceneSpecificChanges,omitempty"`
	ImagePrompt          string `json:"imagePrompt"`
	Role                 string `json:"role,omitempty"`
}

// Setting describes a location the script plays in.
type Setting struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Description           string         `json:"description"`
	ImagePrompt           string         `json:"imagePrompt"`
	KeyFeatures           []string       `json:"keyFeatures,omitempty"`
	TechnicalRequirements map[string]any `json:"technicalRequirements,omitempty"`
}

// ScriptMetadata summarizes a finished script.
type ScriptMetadata struct {
	Title       string      `json:"title"`
	GenreTags   []string    `json:"genre_tags"`
	Duration    int         `json:"duration,omitempty"`
	TotalScenes int         `json:"total_scenes"`
	Characters  []Character `json:"characters"`
}

// GenerateRequest carries a task's parameters into the engine, plus a
// snapshot of accumulated session context so prior work in the same
// session can inform the generation.
type GenerateRequest struct {
	Title      string
	Tags       []string
	Idea       string
	Lyrics     string
	Duration   int
	OutputMode string
	Context    *SessionContext
}

// GenerateResult is the engine's raw output, mapped by the executor
// into typed artifact content.
type GenerateResult struct {
	Script            string             `json:"script"`
	Scenes            []Scene            `json:"scenes"`
	Settings          []Setting          `json:"settings"`
	Characters        []Character        `json:"characters"`
	TransformedScenes []TransformedScene `json:"transformedScenes"`
}

// Engine is the external generation backend invoked by the background
// executor. Implementations are treated as opaque, potentially slow and
// potentially failing; they should wrap provider failures in EngineError
// with an honest Retryable classification.
type Engine interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}
