// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/go-a2a/agentflow/model"
	"github.com/go-a2a/agentflow/session"
)

// toGenAIRole maps a session.Role to genai's two-party role vocabulary.
// System/developer messages never reach here: splitSystemText pulls them
// out as instructions before conversion, matching the teacher's
// "system messages are handled separately" convention in
// Claude.contentToMessageParam.
func toGenAIRole(role session.Role) string {
	if role == session.RoleAssistant {
		return model.RoleModel
	}
	return model.RoleUser
}

// splitSystemText partitions messages into ordinary turns and the text
// carried by system/developer-authored messages, which callers fold
// into the request's system instructions instead of its content turns.
func splitSystemText(messages []session.ChatMessage) (turns []session.ChatMessage, systemText []string) {
	for _, m := range messages {
		if m.Role == session.RoleSystem || m.Role == session.RoleDeveloper {
			if t := m.Text(); t != "" {
				systemText = append(systemText, t)
			}
			continue
		}
		turns = append(turns, m)
	}
	return turns, systemText
}

// toGenAIContents converts session chat turns to genai contents,
// grounded on Claude.contentToMessageParam and Gemini's direct use of
// genai.Content.
func toGenAIContents(messages []session.ChatMessage) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		parts := make([]*genai.Part, 0, len(msg.Contents))
		for _, part := range msg.Contents {
			p, err := toGenAIPart(part)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		contents = append(contents, &genai.Content{
			Role:  toGenAIRole(msg.Role),
			Parts: parts,
		})
	}
	return contents, nil
}

// toGenAIPart converts one ContentPart to a *genai.Part, grounded on
// Claude.partToMessageBlock's per-kind switch.
func toGenAIPart(part session.ContentPart) (*genai.Part, error) {
	switch p := part.(type) {
	case session.TextPart:
		return genai.NewPartFromText(p.Text), nil

	case session.ReasoningPart:
		return genai.NewPartFromText(p.Text), nil

	case session.FunctionCallPart:
		fp := genai.NewPartFromFunctionCall(p.Name, p.Args)
		fp.FunctionCall.ID = p.CallID
		return fp, nil

	case session.FunctionResultPart:
		response, ok := p.Value.(map[string]any)
		if !ok {
			response = map[string]any{"result": p.Value}
		}
		return &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       p.CallID,
				Response: response,
			},
		}, nil

	case session.DataPart:
		return &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: p.MediaType,
				Data:     []byte(p.URI),
			},
		}, nil

	case session.URIPart:
		return &genai.Part{
			FileData: &genai.FileData{
				MIMEType: p.MediaType,
				FileURI:  p.URI,
			},
		}, nil

	case session.ErrorPart:
		return genai.NewPartFromText(fmt.Sprintf("[error %s] %s", p.Code, p.Message)), nil

	default:
		return nil, fmt.Errorf("chatclient: unsupported content part type %T", part)
	}
}

// fromGenAIResponse converts a *model.LLMResponse into a ChatMessage,
// grounded on LLMResponse.GetText/IsError and
// Claude.contentBlockToPart's reverse direction.
func fromGenAIResponse(resp *model.LLMResponse) (session.ChatMessage, error) {
	if resp.IsError() {
		return session.ChatMessage{}, fmt.Errorf("chatclient: model error %s: %s", resp.ErrorCode, resp.ErrorMessage)
	}

	msg := session.ChatMessage{Role: session.RoleAssistant}
	if resp.Content == nil {
		return msg, nil
	}

	msg.Contents = make([]session.ContentPart, 0, len(resp.Content.Parts))
	for _, part := range resp.Content.Parts {
		cp, err := fromGenAIPart(part)
		if err != nil {
			return session.ChatMessage{}, err
		}
		msg.Contents = append(msg.Contents, cp)
	}
	return msg, nil
}

// fromGenAIPart converts one *genai.Part to a ContentPart.
func fromGenAIPart(part *genai.Part) (session.ContentPart, error) {
	switch {
	case part.Text != "":
		return session.TextPart{Text: part.Text}, nil

	case part.FunctionCall != nil:
		return session.FunctionCallPart{
			Name:   part.FunctionCall.Name,
			CallID: part.FunctionCall.ID,
			Args:   part.FunctionCall.Args,
		}, nil

	case part.FunctionResponse != nil:
		return session.FunctionResultPart{
			CallID: part.FunctionResponse.ID,
			Value:  part.FunctionResponse.Response,
		}, nil

	case part.InlineData != nil:
		return session.DataPart{
			URI:       string(part.InlineData.Data),
			MediaType: part.InlineData.MIMEType,
		}, nil

	case part.FileData != nil:
		return session.URIPart{
			URI:       part.FileData.FileURI,
			MediaType: part.FileData.MIMEType,
		}, nil

	default:
		return nil, fmt.Errorf("chatclient: unsupported genai part %+v", part)
	}
}

// toGenAITools converts session tools into one genai.Tool carrying a
// function declaration per tool, grounded on
// Claude.funcDeclarationToToolParam's traversal of
// FunctionDeclaration.Parameters.
func toGenAITools(tools []session.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaFromParameters(t.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// schemaFromParameters builds a minimal object genai.Schema from a raw
// JSON-schema-shaped parameter map. The schema type is always object;
// "required" is copied only when it is a []string and "properties" only
// when it is a map[string]*genai.Schema. Any other shape of those keys,
// and every other key, is dropped.
func schemaFromParameters(params map[string]any) *genai.Schema {
	if len(params) == 0 {
		return &genai.Schema{Type: genai.TypeObject}
	}
	schema := &genai.Schema{Type: genai.TypeObject}
	if required, ok := params["required"].([]string); ok {
		schema.Required = required
	}
	if props, ok := params["properties"].(map[string]*genai.Schema); ok {
		schema.Properties = props
	}
	return schema
}
