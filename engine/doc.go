// Package engine defines the script generation contract consumed by the
// background runner, together with the prompt construction and response
// parsing shared by the concrete LLM adapters (engine/openai,
// engine/anthropic). An Engine turns a GenerateRequest into a full
// GenerateResult in a single blocking call; retry and timeout policy live in
// the runner, not here.
package engine
