package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandEncodeDecode(t *testing.T) {
	set := NewSet("foo", "bar")
	b, err := set.Encode()
	require.NoError(t, err)
	require.Equal(t, `{"Set":{"key":"foo","value":"bar"}}`, string(b))

	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, "foo", decoded.Key())
	require.Equal(t, "bar", decoded.Set.Value)

	rm := NewRemove("foo")
	b, err = rm.Encode()
	require.NoError(t, err)
	require.Equal(t, `{"Rm":{"key":"foo"}}`, string(b))

	decoded, err = Decode(b)
	require.NoError(t, err)
	require.Equal(t, "foo", decoded.Key())
	require.Nil(t, decoded.Set)
	require.NotNil(t, decoded.Rm)
}

func TestScanStreamsBackToBackRecords(t *testing.T) {
	var buf bytes.Buffer

	for i, cmd := range []Command{
		NewSet("a", "1"),
		NewSet("b", "2"),
		NewRemove("a"),
	} {
		b, err := cmd.Encode()
		require.NoError(t, err)
		_, err = buf.Write(b)
		require.NoError(t, err)
		_ = i
	}

	var records []Record
	err := Scan(&buf, func(r Record) error {
		records = append(records, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "a", records[0].Cmd.Key())
	require.Equal(t, "b", records[1].Cmd.Key())
	require.Equal(t, "a", records[2].Cmd.Key())
	require.NotNil(t, records[2].Cmd.Rm)

	// Offsets and lengths must exactly tile the stream with no gaps.
	var total int64
	for _, r := range records {
		require.Equal(t, total, r.Offset)
		total += r.Length
	}
}

func TestDecodeRejectsUndefinedCommand(t *testing.T) {
	_, err := Decode([]byte(`{}`))
	require.Error(t, err)
}
