package jsonl

import (
	"encoding/json"
	"errors"

	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
)

// Record is one unit of work: a conversation, the character name it belongs
// to, and any number of additional fields the pipeline must not touch.
type Record struct {
	Conversation []domain.Turn
	BotName      string

	// extra holds every other top-level field verbatim, so records survive
	// a clean round-trip even when upstream adds fields we know nothing
	// about.
	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes a record while keeping unknown fields raw.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	conv, ok := fields["conversation"]
	if !ok {
		return errors.New(`record is missing "conversation"`)
	}
	if err := json.Unmarshal(conv, &r.Conversation); err != nil {
		return err
	}
	name, ok := fields["bot_name"]
	if !ok {
		return errors.New(`record is missing "bot_name"`)
	}
	if err := json.Unmarshal(name, &r.BotName); err != nil {
		return err
	}
	delete(fields, "conversation")
	delete(fields, "bot_name")
	r.extra = fields
	return nil
}

// MarshalJSON re-emits the record with the (possibly replaced) conversation
// and every passthrough field it arrived with.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(r.extra)+2)
	for k, v := range r.extra {
		fields[k] = v
	}
	conv, err := json.Marshal(r.Conversation)
	if err != nil {
		return nil, err
	}
	name, err := json.Marshal(r.BotName)
	if err != nil {
		return nil, err
	}
	fields["conversation"] = conv
	fields["bot_name"] = name
	return json.Marshal(fields)
}
