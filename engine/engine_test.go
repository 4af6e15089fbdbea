package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scriptmesh/core"
)

func TestFunc_ImplementsEngine(t *testing.T) {
	called := false
	var eng core.Engine = Func(func(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
		called = true
		return &core.GenerateResult{Script: "FADE IN:"}, nil
	})

	result, err := eng.Generate(context.Background(), core.GenerateRequest{Title: "T"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "FADE IN:", result.Script)
}

func TestUserPrompt(t *testing.T) {
	req := core.GenerateRequest{
		Title:      "The Long Night",
		Tags:       []string{"drama", "thriller"},
		Idea:       "A waitress shelters a stranger during a storm",
		Lyrics:     "Rain keeps falling on my mind",
		Duration:   120,
		OutputMode: "markdown",
		Context: &core.SessionContext{
			Themes: []string{"drama"},
			PreviousScripts: []core.ScriptSummary{
				{Title: "The Long Day", Summary: "A diner, a drifter, a decision"},
			},
		},
	}

	prompt := UserPrompt(req)
	assert.Contains(t, prompt, `"The Long Night"`)
	assert.Contains(t, prompt, "drama, thriller")
	assert.Contains(t, prompt, "shelters a stranger")
	assert.Contains(t, prompt, "Rain keeps falling")
	assert.Contains(t, prompt, "120 seconds")
	assert.Contains(t, prompt, "markdown")
	assert.Contains(t, prompt, "Recurring session themes: drama")
	assert.Contains(t, prompt, "The Long Day")
}

func TestUserPrompt_OmitsEmptySections(t *testing.T) {
	prompt := UserPrompt(core.GenerateRequest{Title: "T", OutputMode: "text"})
	assert.NotContains(t, prompt, "Genre tags")
	assert.NotContains(t, prompt, "lyrics")
	assert.NotContains(t, prompt, "duration")
	assert.NotContains(t, prompt, "Previously in this session")
}

func TestParseResult(t *testing.T) {
	raw := `{"script": "FADE IN:\n\nINT. DINER - NIGHT", "scenes": [{"sceneNumber": 1, "startTime": "00:00", "endTime": "01:00", "location": "Diner"}]}`

	result, err := ParseResult(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Script, "FADE IN:"))
	require.Len(t, result.Scenes, 1)
	assert.Equal(t, "Diner", result.Scenes[0].Location)
}

func TestParseResult_StripsMarkdownFences(t *testing.T) {
	fenced := "```json\n{\"script\": \"FADE IN:\"}\n```"

	result, err := ParseResult(fenced)
	require.NoError(t, err)
	assert.Equal(t, "FADE IN:", result.Script)
}

func TestParseResult_FailuresAreTerminal(t *testing.T) {
	for _, raw := range []string{"not json at all", `{"scenes": []}`} {
		_, err := ParseResult(raw)
		var engErr *core.EngineError
		require.ErrorAs(t, err, &engErr, "input %q", raw)
		assert.False(t, engErr.Retryable, "parse failures must not be retried")
	}
}
