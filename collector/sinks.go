package collector

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"
)

// PrintSink writes a summary line and the document for each received document
type PrintSink struct {
	lock   sync.Mutex
	writer io.Writer
	parser fastjson.Parser
}

// NewPrintSink creates a PrintSink writing to the given writer
func NewPrintSink(writer io.Writer) *PrintSink {
	return &PrintSink{writer: writer}
}

// Accept prints "[remote] SEVERITY source: msg" followed by the document itself
func (sink *PrintSink) Accept(remote string, document []byte) {
	sink.lock.Lock()
	defer sink.lock.Unlock()
	if doc, err := sink.parser.ParseBytes(document); err == nil {
		fmt.Fprintf(sink.writer, "[%s] %s %s: %s\n", remote,
			doc.GetStringBytes("severity"), doc.GetStringBytes("source"), doc.GetStringBytes("msg"))
	}
	fmt.Fprintf(sink.writer, "%s\n", document)
}

// FileSink saves documents as JSON lines, compressed by the file extension: ".gz" for gzip or ".zst" for zstd
type FileSink struct {
	lock       sync.Mutex
	file       *os.File
	buffered   *bufio.Writer
	compressor io.WriteCloser // nil if uncompressed
	writer     io.Writer
}

// NewFileSink creates or truncates the file at path
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	sink := &FileSink{
		file:     file,
		buffered: bufio.NewWriter(file),
	}
	switch filepath.Ext(path) {
	case ".gz":
		sink.compressor = gzip.NewWriter(sink.buffered)
	case ".zst":
		encoder, encErr := zstd.NewWriter(sink.buffered)
		if encErr != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create zstd encoder: %w", encErr)
		}
		sink.compressor = encoder
	}
	if sink.compressor != nil {
		sink.writer = sink.compressor
	} else {
		sink.writer = sink.buffered
	}
	return sink, nil
}

// Accept appends the document as a line
func (sink *FileSink) Accept(_ string, document []byte) {
	sink.lock.Lock()
	defer sink.lock.Unlock()
	if sink.writer == nil {
		return
	}
	if _, err := sink.writer.Write(document); err == nil {
		_, _ = sink.writer.Write([]byte{'\n'})
	}
}

// Close finishes compression and closes the file
func (sink *FileSink) Close() error {
	sink.lock.Lock()
	defer sink.lock.Unlock()
	if sink.writer == nil {
		return nil
	}
	sink.writer = nil
	var firstErr error
	if sink.compressor != nil {
		firstErr = sink.compressor.Close()
	}
	if err := sink.buffered.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := sink.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// MultiSink passes documents to all of its sinks in order
type MultiSink []DocumentSink

// Accept passes the document to every sink
func (sinks MultiSink) Accept(remote string, document []byte) {
	for _, sink := range sinks {
		sink.Accept(remote, document)
	}
}

// ChannelSink copies documents into a channel, mainly for tests
type ChannelSink chan string

// Accept sends a copy of the document to the channel, blocking if it's full
func (sink ChannelSink) Accept(_ string, document []byte) {
	sink <- string(document)
}
