// Package settings persists the board's non-volatile settings between
// restarts: display preferences, the selected rule set and calling style,
// and the board PIN. Game progress is never persisted.
package settings

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"regexp"
)

// Settings mirrors the original device's NVS namespace.
type Settings struct {
	Brightness   int    `json:"brightness"`
	Theme        int    `json:"theme"`
	ColorMode    string `json:"colorMode"`   // "theme" | "solid"
	StaticColor  string `json:"staticColor"` // "#RRGGBB"
	GameType     string `json:"gameType"`
	CallingStyle string `json:"callingStyle"`
	BoardPin     string `json:"boardPin"`
}

// Defaults are applied for any field that is missing or fails validation on
// load. The PIN default comes from configuration, not from here.
func Defaults() Settings {
	return Settings{
		Brightness:   128,
		Theme:        0,
		ColorMode:    "theme",
		StaticColor:  "#00FF00",
		GameType:     "traditional",
		CallingStyle: "automatic",
	}
}

// Store is the persistence collaborator. The board saves on every settings
// mutation and loads once at startup.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileStore keeps the settings blob in a single JSON file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and sanitizes the settings file. A missing file is not an
// error; it yields defaults.
func (s *FileStore) Load() (Settings, error) {
	out := Defaults()
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return out, err
	}
	var loaded Settings
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return out, err
	}
	return Sanitize(loaded), nil
}

func (s *FileStore) Save(set Settings) error {
	raw, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, raw, 0o644)
}

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validGameTypes = map[string]bool{
	"traditional": true, "four_corners": true, "postage_stamp": true,
	"cover_all": true, "x": true, "y": true,
	"frame_outside": true, "frame_inside": true,
}

// Sanitize clamps every field to its legal range, falling back to the
// default for anything unrecognized.
func Sanitize(in Settings) Settings {
	out := Defaults()
	if in.Brightness >= 0 && in.Brightness <= 255 {
		out.Brightness = in.Brightness
	}
	if in.Theme >= 0 {
		out.Theme = in.Theme
	}
	if in.ColorMode == "theme" || in.ColorMode == "solid" {
		out.ColorMode = in.ColorMode
	}
	if colorRe.MatchString(in.StaticColor) {
		out.StaticColor = in.StaticColor
	}
	if validGameTypes[in.GameType] {
		out.GameType = in.GameType
	}
	if in.CallingStyle == "automatic" || in.CallingStyle == "manual" {
		out.CallingStyle = in.CallingStyle
	}
	if len(in.BoardPin) >= 4 {
		out.BoardPin = in.BoardPin
	}
	return out
}

// Noop discards saves and always loads defaults. Used when persistence is
// disabled.
type Noop struct{}

func (Noop) Load() (Settings, error) { return Defaults(), nil }
func (Noop) Save(Settings) error     { return nil }
