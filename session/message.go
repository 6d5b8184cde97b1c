// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	json "encoding/json/v2"
	"fmt"
)

// Role identifies who authored a [ChatMessage].
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleDeveloper Role = "developer"
)

// ChatMessage is one turn in a conversation: a role, an optional author
// name (distinguishing participants sharing a role, e.g. in a group
// chat), an ordered list of content parts, and free-form metadata.
// Grounded on the teacher's genai.Content shape (role + ordered parts),
// generalized to the spec's seven content-part kinds instead of
// genai.Part's media-only union.
type ChatMessage struct {
	Role       Role
	AuthorName string
	Contents   []ContentPart
	Metadata   map[string]any
}

// ContentPart is one piece of a ChatMessage's content. It is a closed
// sum type — TextPart, DataPart, URIPart, FunctionCallPart,
// FunctionResultPart, ErrorPart, ReasoningPart are its only members —
// sealed via the unexported isContentPart method, the same pattern
// workflow.Edge uses for routing rules.
type ContentPart interface {
	isContentPart()

	// partType returns the wire discriminant used by MarshalContentPart/
	// UnmarshalContentPart (spec.md §6 "Message-content wire model").
	partType() string
}

// TextPart is plain text content.
type TextPart struct {
	Text string
}

func (TextPart) isContentPart()    {}
func (TextPart) partType() string { return "text" }

// DataPart is inline media content addressed by URI with an explicit
// media type (e.g. a data: URI carrying base64 bytes).
type DataPart struct {
	URI       string
	MediaType string
}

func (DataPart) isContentPart()    {}
func (DataPart) partType() string { return "data" }

// URIPart references external media by URI without embedding it.
type URIPart struct {
	URI       string
	MediaType string
}

func (URIPart) isContentPart()    {}
func (URIPart) partType() string { return "uri" }

// FunctionCallPart is a model-issued request to invoke a tool.
type FunctionCallPart struct {
	Name   string
	CallID string
	Args   map[string]any
}

func (FunctionCallPart) isContentPart()    {}
func (FunctionCallPart) partType() string { return "function_call" }

// FunctionResultPart is the result of a tool invocation, correlated to
// its FunctionCallPart by CallID.
type FunctionResultPart struct {
	CallID string
	Value  any
}

func (FunctionResultPart) isContentPart()    {}
func (FunctionResultPart) partType() string { return "function_result" }

// ErrorPart reports a tool or model-side failure inline in the
// conversation.
type ErrorPart struct {
	Code    string
	Message string
}

func (ErrorPart) isContentPart()    {}
func (ErrorPart) partType() string { return "error" }

// ReasoningPart carries a model's intermediate reasoning trace, kept
// distinct from TextPart so chat-history providers and UIs can choose
// to drop it.
type ReasoningPart struct {
	Text string
}

func (ReasoningPart) isContentPart()    {}
func (ReasoningPart) partType() string { return "reasoning" }

// wireContentPart is the tagged-union JSON shape from spec.md §6: a
// discriminant `type` field plus every part kind's fields flattened
// into one object. Grounded on the teacher's EncodeContent/DecodeContent
// tagged-dictionary round-trip, generalized from one media-part shape
// to the seven content-part kinds.
type wireContentPart struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	URI       string `json:"uri,omitempty"`
	MediaType string `json:"mediaType,omitempty"`

	Name   string         `json:"name,omitempty"`
	CallID string         `json:"callId,omitempty"`
	Args   map[string]any `json:"args,omitempty"`

	Value any `json:"value,omitempty"`

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// MarshalContentPart renders part into its spec.md §6 wire shape.
func MarshalContentPart(part ContentPart) ([]byte, error) {
	w := wireContentPart{Type: part.partType()}
	switch p := part.(type) {
	case TextPart:
		w.Text = p.Text
	case DataPart:
		w.URI, w.MediaType = p.URI, p.MediaType
	case URIPart:
		w.URI, w.MediaType = p.URI, p.MediaType
	case FunctionCallPart:
		w.Name, w.CallID, w.Args = p.Name, p.CallID, p.Args
	case FunctionResultPart:
		w.CallID, w.Value = p.CallID, p.Value
	case ErrorPart:
		w.Code, w.Message = p.Code, p.Message
	case ReasoningPart:
		w.Text = p.Text
	default:
		return nil, fmt.Errorf("session: unknown content part type %T", part)
	}
	return json.Marshal(w)
}

// UnmarshalContentPart decodes data per its `type` discriminant.
func UnmarshalContentPart(data []byte) (ContentPart, error) {
	var w wireContentPart
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	switch w.Type {
	case "text":
		return TextPart{Text: w.Text}, nil
	case "data":
		return DataPart{URI: w.URI, MediaType: w.MediaType}, nil
	case "uri":
		return URIPart{URI: w.URI, MediaType: w.MediaType}, nil
	case "function_call":
		return FunctionCallPart{Name: w.Name, CallID: w.CallID, Args: w.Args}, nil
	case "function_result":
		return FunctionResultPart{CallID: w.CallID, Value: w.Value}, nil
	case "error":
		return ErrorPart{Code: w.Code, Message: w.Message}, nil
	case "reasoning":
		return ReasoningPart{Text: w.Text}, nil
	default:
		return nil, fmt.Errorf("session: unknown content part type %q", w.Type)
	}
}

// Text returns m's content parts concatenated, ignoring non-text parts.
// A convenience used by the chatclient conversion and the demo CLI,
// not part of the wire model.
func (m ChatMessage) Text() string {
	var out string
	for _, c := range m.Contents {
		if t, ok := c.(TextPart); ok {
			out += t.Text
		}
	}
	return out
}

// NewTextMessage builds a single-part text message.
func NewTextMessage(role Role, text string) ChatMessage {
	return ChatMessage{Role: role, Contents: []ContentPart{TextPart{Text: text}}}
}
