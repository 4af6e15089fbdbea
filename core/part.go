package core

import (
	"encoding/json"
	"fmt"
)

// Part represents a polymorphic segment of message or artifact content.
// Concrete part types implement the unexported isPart marker enabling a
// closed set; exactly one variant is active per part.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// InlineDataPart carries base64 encoded payload bytes inline.
type InlineDataPart struct {
	MimeType string
	Data     string // Base64-encoded payload
	Metadata map[string]any
}

// isPart implements the Part interface for InlineDataPart.
func (InlineDataPart) isPart() {}

// ReferenceDataPart points at externally retrievable content instead of
// inlining it.
type ReferenceDataPart struct {
	MimeType  string
	Reference map[string]string // At minimum a "url" entry
	Metadata  map[string]any
}

// isPart implements the Part interface for ReferenceDataPart.
func (ReferenceDataPart) isPart() {}

// Part type discriminants used on the wire.
const (
	PartTypeText          = "text"
	PartTypeInlineData    = "inline-data"
	PartTypeReferenceData = "reference-data"
)

type textPartJSON struct {
	Type     string         `json:"type"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type inlineDataPartJSON struct {
	Type     string         `json:"type"`
	MimeType string         `json:"mimeType"`
	Data     string         `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type referenceDataPartJSON struct {
	Type      string            `json:"type"`
	MimeType  string            `json:"mimeType"`
	Reference map[string]string `json:"reference"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// MarshalJSON emits the part with its "type" discriminant.
func (p TextPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(textPartJSON{Type: PartTypeText, Text: p.Text, Metadata: p.Metadata})
}

// MarshalJSON emits the part with its "type" discriminant.
func (p InlineDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(inlineDataPartJSON{Type: PartTypeInlineData, MimeType: p.MimeType, Data: p.Data, Metadata: p.Metadata})
}

// MarshalJSON emits the part with its "type" discriminant.
func (p ReferenceDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(referenceDataPartJSON{Type: PartTypeReferenceData, MimeType: p.MimeType, Reference: p.Reference, Metadata: p.Metadata})
}

// DecodePart parses a single serialized part, dispatching on the "type"
// discriminant. Unknown discriminants are rejected rather than silently
// coerced.
func DecodePart(data []byte) (Part, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode part: %w", err)
	}
	switch probe.Type {
	case PartTypeText:
		var p textPartJSON
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode text part: %w", err)
		}
		return TextPart{Text: p.Text, Metadata: p.Metadata}, nil
	case PartTypeInlineData:
		var p inlineDataPartJSON
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode inline-data part: %w", err)
		}
		return InlineDataPart{MimeType: p.MimeType, Data: p.Data, Metadata: p.Metadata}, nil
	case PartTypeReferenceData:
		var p referenceDataPartJSON
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode reference-data part: %w", err)
		}
		return ReferenceDataPart{MimeType: p.MimeType, Reference: p.Reference, Metadata: p.Metadata}, nil
	default:
		return nil, fmt.Errorf("decode part: unknown type %q", probe.Type)
	}
}

// DecodeParts parses a serialized part list.
func DecodeParts(data []byte) ([]Part, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode parts: %w", err)
	}
	parts := make([]Part, 0, len(raw))
	for i, r := range raw {
		p, err := DecodePart(r)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// PartText extracts the concatenated plain text of a part list, skipping
// non-text variants.
func PartText(parts []Part) string {
	var out string
	for _, p := range parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}
