package wire

import (
	"bufio"
	"io"
	"os"
)

// PositionedWriter wraps a buffered, append-opened segment file and tracks
// the absolute byte offset of the next write. Record boundaries in a
// segment are defined by byte offsets and lengths, and the writer needs to
// report a record's starting offset to the index cheaply — without a
// Stat() round-trip on every Append.
type PositionedWriter struct {
	file *os.File
	buf  *bufio.Writer
	pos  int64
}

// NewPositionedWriter wraps f, which must already be positioned at the
// offset new writes should begin at (typically end-of-file for an
// append-opened segment).
func NewPositionedWriter(f *os.File) (*PositionedWriter, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &PositionedWriter{file: f, buf: bufio.NewWriter(f), pos: pos}, nil
}

// Pos returns the offset the next Write call will begin at.
func (w *PositionedWriter) Pos() int64 {
	return w.pos
}

// Write implements io.Writer, advancing the tracked position by the number
// of bytes buffered.
func (w *PositionedWriter) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.pos += int64(n)
	return n, err
}

// Flush pushes any buffered bytes to the OS. The engine's durability
// contract (spec.md §1) stops here — no fsync is implied.
func (w *PositionedWriter) Flush() error {
	return w.buf.Flush()
}

// Sync flushes buffered bytes and fsyncs the underlying file. Only called
// when options.Options.Sync opts into it; not required by the contract.
func (w *PositionedWriter) Sync() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes and closes the underlying file.
func (w *PositionedWriter) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// PositionedReader wraps a read-only segment file handle and tracks the
// absolute byte offset of the next read, the way a reader-pool entry needs
// to in order to seek directly to a CmdPos without re-deriving position
// from repeated stat/seek round-trips elsewhere.
type PositionedReader struct {
	file *os.File
	buf  *bufio.Reader
	pos  int64
}

// NewPositionedReader opens path read-only and wraps it.
func NewPositionedReader(path string) (*PositionedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewPositionedReaderFromFile(f), nil
}

// NewPositionedReaderFromFile wraps an already-open file, for callers (the
// reader pool) that need the same *os.File for another purpose — mmap'ing
// it — and would otherwise have to open the segment twice.
func NewPositionedReaderFromFile(f *os.File) *PositionedReader {
	return &PositionedReader{file: f, buf: bufio.NewReader(f)}
}

// File returns the underlying file handle, e.g. so a caller can mmap the
// same fd the reader falls back to for out-of-range offsets.
func (r *PositionedReader) File() *os.File {
	return r.file
}

// ReadAt reads exactly len(p) bytes starting at the given absolute offset,
// decoupled from the reader's current tracked position — used by the
// reader pool to fetch one record located by its CmdPos.
func (r *PositionedReader) ReadAt(p []byte, offset int64) error {
	if offset != r.pos {
		if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
			return err
		}
		r.buf.Reset(r.file)
		r.pos = offset
	}
	n, err := io.ReadFull(r.buf, p)
	r.pos += int64(n)
	return err
}

// Close releases the underlying file handle.
func (r *PositionedReader) Close() error {
	return r.file.Close()
}
