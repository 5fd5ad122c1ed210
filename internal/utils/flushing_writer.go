package utils

import (
	"bytes"
	"io"
	"sync"
)

const lineTerminatorConstant = '\n'

// FlushingWriter forwards output one complete line at a time and flushes buffered destinations after each forward.
// Partial lines are held until a newline arrives or Flush is called, so transcript lines never interleave with log lines.
type FlushingWriter struct {
	writer  io.Writer
	pending []byte
	mutex   sync.Mutex
}

// NewFlushingWriter wraps writer; an existing FlushingWriter is returned unchanged.
func NewFlushingWriter(writer io.Writer) *FlushingWriter {
	if writer == nil {
		return nil
	}
	if existingWriter, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existingWriter
	}
	return &FlushingWriter{writer: writer}
}

// Write accepts data and forwards every complete line it now holds.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return len(data), nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	flushingWriter.pending = append(flushingWriter.pending, data...)
	lastTerminatorIndex := bytes.LastIndexByte(flushingWriter.pending, lineTerminatorConstant)
	if lastTerminatorIndex < 0 {
		return len(data), nil
	}

	if forwardError := flushingWriter.forward(lastTerminatorIndex + 1); forwardError != nil {
		return 0, forwardError
	}
	return len(data), nil
}

// Flush forwards any partial line still held.
func (flushingWriter *FlushingWriter) Flush() error {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	if len(flushingWriter.pending) == 0 {
		return nil
	}
	return flushingWriter.forward(len(flushingWriter.pending))
}

func (flushingWriter *FlushingWriter) forward(length int) error {
	if _, writeError := flushingWriter.writer.Write(flushingWriter.pending[:length]); writeError != nil {
		return writeError
	}
	flushingWriter.pending = append(flushingWriter.pending[:0], flushingWriter.pending[length:]...)

	if flushableWriter, implementsFlush := flushingWriter.writer.(interface{ Flush() error }); implementsFlush {
		return flushableWriter.Flush()
	}
	return nil
}
