package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
)

// readSegments loads a transcript file: SRT by extension, otherwise JSON
// as a bare segment array or an object with a "segments" field.
func readSegments(path string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		return transcript.ParseSRT(string(data)) //nolint:wrapcheck // validation sentinel
	}
	return decodeSegments(data)
}

func decodeSegments(data []byte) ([]transcript.Segment, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var segs []transcript.Segment
		if err := json.Unmarshal(data, &segs); err != nil {
			return nil, fmt.Errorf("decode segments: %w", err)
		}
		return segs, nil
	}
	var doc struct {
		Segments []transcript.Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return doc.Segments, nil
}

// readVerses decodes one verse per line. Blank lines are skipped.
func readVerses(r io.Reader) ([]bible.Verse, error) {
	var verses []bible.Verse
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var v bible.Verse
		if err := json.Unmarshal(text, &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		verses = append(verses, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read verses: %w", err)
	}
	return verses, nil
}
