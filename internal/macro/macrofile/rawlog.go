package macrofile

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/consolidate"
)

// LogExt is the raw event log extension.
const LogExt = ".jsonl"

// maxLogLine bounds a single raw event log line.
const maxLogLine = 1 << 20

// ReadLog reads a raw event log: one JSON object per line with the fields
// t, kind and details. Blank lines are ignored. Lines that are not valid
// JSON objects, such as a line still being written, are skipped.
func ReadLog(r io.Reader, logger *logging.Logger) ([]consolidate.RawEvent, error) {
	logger = logging.OrNull(logger).WithComponent("rawlog")

	var events []consolidate.RawEvent
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLogLine)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			logger.Debug("skipping invalid line %d", lineNum)
			continue
		}

		obj := gjson.ParseBytes(line)
		t := obj.Get("t")
		if !obj.IsObject() || !isUint(t) {
			logger.Debug("skipping line %d: missing time", lineNum)
			continue
		}
		events = append(events, consolidate.RawEvent{
			Timestamp: t.Uint(),
			Kind:      obj.Get("kind").String(),
			Details:   obj.Get("details").String(),
		})
	}
	if err := sc.Err(); err != nil {
		return events, fmt.Errorf("read log line %d: %w", lineNum+1, err)
	}
	return events, nil
}

// ReadLogFile reads the raw event log at path.
func ReadLogFile(path string, logger *logging.Logger) ([]consolidate.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, opError("read log", path, err)
	}
	defer f.Close()

	events, err := ReadLog(f, logger)
	return events, opError("read log", path, err)
}

// MarshalLogLine encodes one raw event as a log line without the trailing
// newline.
func MarshalLogLine(ev consolidate.RawEvent) ([]byte, error) {
	line, err := sjson.SetBytes([]byte(`{}`), "t", ev.Timestamp)
	if err == nil {
		line, err = sjson.SetBytes(line, "kind", ev.Kind)
	}
	if err == nil {
		line, err = sjson.SetBytes(line, "details", ev.Details)
	}
	return line, err
}

// WriteLog writes events to w, one line each.
func WriteLog(w io.Writer, events []consolidate.RawEvent) error {
	bw := bufio.NewWriter(w)
	for _, ev := range events {
		line, err := MarshalLogLine(ev)
		if err != nil {
			return err
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// AppendLogFile appends events to the log at path, creating it if needed.
func AppendLogFile(path string, events []consolidate.RawEvent) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return opError("append log", path, err)
	}
	if err := WriteLog(f, events); err != nil {
		f.Close()
		return opError("append log", path, err)
	}
	return opError("append log", path, f.Close())
}
