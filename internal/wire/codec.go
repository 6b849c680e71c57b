package wire

import (
	"encoding/json"
	"fmt"
	"io"
)

// SetCmd is the log record written for a Set operation.
type SetCmd struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RmCmd is the log record written for a Remove operation. Replay treats
// its presence as a tombstone: the key is deleted from the index and its
// own on-disk length counts toward the stale-byte total, same as the
// entry it retires.
type RmCmd struct {
	Key string `json:"key"`
}

// Command is a single log record. Exactly one of Set or Rm is populated;
// the JSON shape is the self-delimiting, tagged-union form every record on
// disk takes: {"Set":{...}} or {"Rm":{...}}. Network requests use the
// separate pkg/protocol types instead.
type Command struct {
	Set *SetCmd `json:"Set,omitempty"`
	Rm  *RmCmd  `json:"Rm,omitempty"`
}

// NewSet builds a Set command record.
func NewSet(key, value string) Command {
	return Command{Set: &SetCmd{Key: key, Value: value}}
}

// NewRemove builds a Rm command record.
func NewRemove(key string) Command {
	return Command{Rm: &RmCmd{Key: key}}
}

// Key returns the key the command addresses, regardless of variant.
func (c Command) Key() string {
	if c.Set != nil {
		return c.Set.Key
	}
	if c.Rm != nil {
		return c.Rm.Key
	}
	return ""
}

// Encode marshals the command to its on-disk JSON form.
func (c Command) Encode() ([]byte, error) {
	if c.Set == nil && c.Rm == nil {
		return nil, fmt.Errorf("wire: command has neither Set nor Rm populated")
	}
	return json.Marshal(c)
}

// Decode unmarshals a single command from an exact-length byte slice, the
// way the reader pool does once it has located a record by its CmdPos.
func Decode(b []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(b, &c); err != nil {
		return Command{}, err
	}
	if c.Set == nil && c.Rm == nil {
		return Command{}, fmt.Errorf("wire: undefined command")
	}
	return c, nil
}

// Record pairs a decoded command with the byte range it occupied in the
// segment it was read from, as produced during replay.
type Record struct {
	Cmd    Command
	Offset int64
	Length int64
}

// Scan streams every record out of r in order, starting at whatever offset
// r is currently positioned at, invoking fn for each one with its exact
// byte range. It stops at the first io.EOF that lands on a record
// boundary; a JSON error mid-record is reported as a truncated/corrupt
// segment rather than silently swallowed, since a partially written final
// record (e.g. from a crash mid-append) is expected in the final segment
// only and callers decide how to handle it.
//
// Adjacent records abut with no separator, so decoding is done with one
// json.Decoder looping until EOF rather than scanning for delimiters —
// the same technique used for decoding a stream of concatenated JSON
// values.
func Scan(r io.Reader, fn func(Record) error) error {
	dec := json.NewDecoder(r)
	var offset int64
	for {
		var c Command
		err := dec.Decode(&c)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("wire: decode at offset %d: %w", offset, err)
		}
		if c.Set == nil && c.Rm == nil {
			return fmt.Errorf("wire: undefined command at offset %d", offset)
		}

		next := dec.InputOffset()
		if err := fn(Record{Cmd: c, Offset: offset, Length: next - offset}); err != nil {
			return err
		}
		offset = next
	}
}
