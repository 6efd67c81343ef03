package camclip

import (
	"encoding/xml"
	"fmt"
	"os"
)

// ParseClip parses clip XML. The content has no root element, so it is
// wrapped with a <clip> root before decoding.
func ParseClip(data []byte) (*ClipXML, error) {
	wrapped := make([]byte, 0, len(data)+len("<clip></clip>"))
	wrapped = append(wrapped, "<clip>"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "</clip>"...)

	var clip ClipXML
	if err := xml.Unmarshal(wrapped, &clip); err != nil {
		return nil, fmt.Errorf("failed to parse clip XML: %w", err)
	}
	return &clip, nil
}

// LoadClip reads and parses a clip file, then resolves the named track.
//
// Parameters:
//   - path: path to the clip file, e.g. "data/clips/opening.clip"
//   - track: track to sample; empty selects DefaultTrack
//
// Example:
//
//	clip, err := LoadClip("data/clips/opening.clip", "")
//	if err != nil {
//	    return err
//	}
//	src := NewSource(clip)
func LoadClip(path, track string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip file '%s': %w", path, err)
	}
	x, err := ParseClip(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	clip, err := NewClip(x, track)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return clip, nil
}
