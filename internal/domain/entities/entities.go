package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrOptionsRequired = errors.New("options are required")
	ErrMissingGroups   = errors.New("missing field `groups`")
	ErrUnknownCommand  = errors.New("unknown command")
)

// LotteryOptions is the single persisted options record. Groups is an opaque
// JSON tree owned by the UI: nil, bool, json.Number, string, []any or
// map[string]any.
type LotteryOptions struct {
	Groups any `json:"groups"`
}

// NewLotteryOptions builds options from a raw JSON groups value.
func NewLotteryOptions(groups json.RawMessage) (*LotteryOptions, error) {
	v, err := DecodeValue(groups)
	if err != nil {
		return nil, err
	}
	return &LotteryOptions{Groups: v}, nil
}

// UnmarshalJSON requires the groups key to be present. A null value is kept
// as a nil Groups; unknown sibling keys are ignored.
func (o *LotteryOptions) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	raw, ok := fields["groups"]
	if !ok {
		return ErrMissingGroups
	}

	groups, err := DecodeValue(raw)
	if err != nil {
		return fmt.Errorf("invalid groups: %w", err)
	}

	o.Groups = groups
	return nil
}

// Clone returns a deep copy of the options.
func (o *LotteryOptions) Clone() *LotteryOptions {
	if o == nil {
		return nil
	}
	return &LotteryOptions{Groups: CloneValue(o.Groups)}
}

// DecodeValue decodes a single JSON value into a generic tree. Numbers are
// kept as json.Number so they re-encode with their original text.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// CloneValue deep-copies the containers of a generic JSON tree. Leaves are
// immutable and shared.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = CloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}
