package core

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/dailywhisker/internal/models"
)

var (
	ErrMalformedSettingsFile = errors.New("malformed settings file")
	ErrUnsupportedFormat     = errors.New("unsupported settings format")
)

// SettingsFormat is a settings interchange format.
type SettingsFormat string

const (
	FormatJSON SettingsFormat = "json"
	FormatXML  SettingsFormat = "xml"
)

// ParseSettingsFormat accepts "json" or "xml" in any case.
func ParseSettingsFormat(s string) (SettingsFormat, error) {
	switch SettingsFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, s)
}

// DetectSettingsFormat guesses the format from the first significant byte.
func DetectSettingsFormat(data []byte) (SettingsFormat, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrMalformedSettingsFile)
	}
	switch trimmed[0] {
	case '{':
		return FormatJSON, nil
	case '<':
		return FormatXML, nil
	}
	return "", fmt.Errorf("%w: cannot detect format", ErrUnsupportedFormat)
}

// ContentType returns the MIME type for the format.
func (f SettingsFormat) ContentType() string {
	if f == FormatXML {
		return "application/xml"
	}
	return "application/json"
}

// settingsXML has no XMLName so files written with another root element still import.
type settingsXML struct {
	CatBorder     string `xml:"catBorder"`
	CatBackground string `xml:"catBackground"`
	AppTheme      string `xml:"appTheme"`
	UpdatedAt     string `xml:"updatedAt"`
}

type settingsXMLFile struct {
	XMLName xml.Name `xml:"settings"`
	settingsXML
}

type settingsJSON struct {
	CatBorder     string          `json:"catBorder"`
	CatBackground string          `json:"catBackground"`
	AppTheme      string          `json:"appTheme"`
	UpdatedAt     json.RawMessage `json:"updatedAt,omitempty"`
}

// parseTimestamp accepts an integer millisecond value and rejects everything else.
func parseTimestamp(raw string) (int64, bool) {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// EncodeSettings serializes s in the given format.
func EncodeSettings(s models.Settings, format SettingsFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatXML:
		doc := settingsXML{
			CatBorder:     string(s.CatBorder),
			CatBackground: string(s.CatBackground),
			AppTheme:      string(s.AppTheme),
			UpdatedAt:     strconv.FormatInt(s.UpdatedAt, 10),
		}
		out, err := xml.MarshalIndent(settingsXMLFile{settingsXML: doc}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append([]byte(xml.Header), out...), nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
}

// DecodeSettings parses a settings file. Missing or unknown values take the defaults.
// Only the three setting fields are required to be meaningful; an updatedAt that is not an
// integer (a date string, a bool) is ignored in both formats.
func DecodeSettings(data []byte, format SettingsFormat) (models.Settings, error) {
	var (
		raw       settingsJSON
		updatedAt string
	)
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return models.Settings{}, fmt.Errorf("%w: %v", ErrMalformedSettingsFile, err)
		}
		updatedAt = string(raw.UpdatedAt)
	case FormatXML:
		var doc settingsXML
		if err := xml.Unmarshal(data, &doc); err != nil {
			return models.Settings{}, fmt.Errorf("%w: %v", ErrMalformedSettingsFile, err)
		}
		raw = settingsJSON{
			CatBorder:     doc.CatBorder,
			CatBackground: doc.CatBackground,
			AppTheme:      doc.AppTheme,
		}
		updatedAt = doc.UpdatedAt
	default:
		return models.Settings{}, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
	}

	s := models.Settings{
		CatBorder:     models.CatBorder(strings.TrimSpace(raw.CatBorder)),
		CatBackground: models.CatBackground(strings.TrimSpace(raw.CatBackground)),
		AppTheme:      models.AppTheme(strings.TrimSpace(raw.AppTheme)),
	}
	if ts, ok := parseTimestamp(updatedAt); ok {
		s.UpdatedAt = ts
	}
	return s.WithDefaults(), nil
}
