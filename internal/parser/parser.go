// Package parser turns a raw LLM reply into a list of validated actions.
//
// The wire format is a set of top-level `<tag>...</tag>` blocks whose body is
// a YAML mapping. Tags are not allowed to nest; a tag's opening bracket must
// start a line (after optional leading whitespace). Three tags —
// `file`, `search`, `scratchpad` — multiplex several action kinds behind an
// `action:` discriminator field inside the payload.
package parser

import (
	"bytes"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nextlevelbuilder/hiveagent/internal/action"
)

// tagPattern anchors a tag's opening bracket at the start of a line (after
// optional leading whitespace) and matches non-greedily to the first
// corresponding close tag. This mirrors the original Python parser's
// r'(?:^|\n)\s*<(\w+)>([\s\S]*?)</\1>' applied with MULTILINE.
var tagPattern = regexp.MustCompile(`(?m)(?:^|\n)[ \t]*<(\w+)>([\s\S]*?)</\1>`)

// ignoredTags are recognized but never treated as action attempts.
var ignoredTags = map[string]bool{
	"think":    true,
	"reasoning": true,
	"plan_md":  true,
}

// fileActions maps the `file` tag's `action:` discriminator to a constructor.
var fileActions = map[string]func() action.Action{
	"read":       func() action.Action { return &action.Read{} },
	"write":      func() action.Action { return &action.Write{} },
	"edit":       func() action.Action { return &action.Edit{} },
	"multi_edit": func() action.Action { return &action.MultiEdit{} },
	"metadata":   func() action.Action { return &action.FileMetadata{} },
}

// searchActions maps the `search` tag's `action:` discriminator.
var searchActions = map[string]func() action.Action{
	"grep": func() action.Action { return &action.Grep{} },
	"glob": func() action.Action { return &action.Glob{} },
	"ls":   func() action.Action { return &action.LS{} },
}

// directActions maps a tag name directly to a constructor (no discriminator).
var directActions = map[string]func() action.Action{
	"bash":              func() action.Action { return &action.Bash{} },
	"finish":            func() action.Action { return &action.Finish{} },
	"todo":              func() action.Action { return &action.Todo{} },
	"task_create":       func() action.Action { return &action.TaskCreate{} },
	"add_context":       func() action.Action { return &action.AddContext{} },
	"launch_subagent":   func() action.Action { return &action.LaunchSubagent{} },
	"report":            func() action.Action { return &action.Report{} },
	"write_temp_script": func() action.Action { return &action.WriteTempScript{} },
}

// ParseResult is the outcome of parsing one LLM reply.
type ParseResult struct {
	Actions            []action.Action
	Errors             []string
	FoundActionAttempt bool
}

// Parse extracts and validates every top-level action tag in response.
// Parsing of one tag never aborts parsing of its siblings — a malformed tag
// contributes an error message and is otherwise skipped.
func Parse(response string) ParseResult {
	var result ParseResult

	for _, m := range tagPattern.FindAllStringSubmatch(response, -1) {
		tagName, body := m[1], m[2]

		if ignoredTags[tagName] {
			continue
		}
		result.FoundActionAttempt = true

		act, err := parseTag(tagName, body)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("[%s] %v", tagName, err))
			continue
		}
		result.Actions = append(result.Actions, act)
	}

	return result
}

func parseTag(tagName, body string) (action.Action, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("YAML error: %w", err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	ctor, cleaned, err := classify(tagName, raw)
	if err != nil {
		return nil, err
	}
	if ctor == nil {
		return nil, fmt.Errorf("unknown action type: %s", tagName)
	}

	act := ctor()
	if err := decodeStrict(cleaned, act); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if err := action.Finalize(act); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return act, nil
}

// classify resolves the constructor for a tag and strips any discriminator
// field its payload carried, since the target struct doesn't declare it.
func classify(tagName string, data map[string]interface{}) (func() action.Action, map[string]interface{}, error) {
	if ctor, ok := directActions[tagName]; ok {
		return ctor, data, nil
	}

	switch tagName {
	case "file":
		return dispatchDiscriminated(data, fileActions)
	case "search":
		return dispatchDiscriminated(data, searchActions)
	case "scratchpad":
		kind, _ := data["action"].(string)
		switch kind {
		case "add_note":
			return func() action.Action { return &action.AddNote{} },
				map[string]interface{}{"content": data["content"]}, nil
		case "view_all_notes":
			return func() action.Action { return &action.ViewAllNotes{} }, map[string]interface{}{}, nil
		}
		return nil, data, nil
	}

	return nil, data, nil
}

func dispatchDiscriminated(data map[string]interface{}, table map[string]func() action.Action) (func() action.Action, map[string]interface{}, error) {
	kind, _ := data["action"].(string)
	ctor, ok := table[kind]
	if !ok {
		return nil, data, nil
	}
	cleaned := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "action" {
			continue
		}
		cleaned[k] = v
	}
	return ctor, cleaned, nil
}

// decodeStrict re-marshals the cleaned payload and decodes it into dst with
// KnownFields enabled, so any field the action struct doesn't declare is
// rejected — matching Pydantic's extra="forbid".
func decodeStrict(data map[string]interface{}, dst interface{}) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
