package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/natty/internal/command"
)

// DefaultFileName is looked up in the working directory when no path is
// given.
const DefaultFileName = "Natty.toml"

// General holds runtime settings that are not command bindings.
type General struct {
	// TickMS is the scheduler period in milliseconds. Zero selects the
	// engine default.
	TickMS int `json:"tick_ms,omitempty" yaml:"tick_ms,omitempty" toml:"tick_ms,omitempty"`

	// LogLevel is one of debug, info, warn, error. Empty means info.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`

	// Devices lists explicit evdev paths. Empty means discover.
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty" toml:"devices,omitempty"`
}

// Tick returns the configured scheduler period, or 0 when unset.
func (g General) Tick() time.Duration {
	return time.Duration(g.TickMS) * time.Millisecond
}

// Level returns the configured log level.
func (g General) Level() slog.Level {
	lvl, _ := ParseLevel(g.LogLevel)
	return lvl
}

// File is a decoded configuration document.
type File struct {
	General  General           `json:"general" yaml:"general" toml:"general"`
	Commands []command.Binding `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty"`

	// Path is the file the document was read from.
	Path string `json:"-" yaml:"-" toml:"-"`
}

// Table builds the command table from the file's bindings.
func (f *File) Table(keys command.KeyResolver) (*command.Table, error) {
	return command.Build(f.Commands, keys)
}

// Load reads, decodes and schema-checks the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "config file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: "read config", Err: err}
	}

	f, err := Parse(data, formatOf(path))
	if err != nil {
		for _, le := range LoadErrors(err) {
			le.Path = path
		}
		return nil, err
	}
	f.Path = path

	slog.Debug("config loaded", "path", path, "commands", len(f.Commands))
	return f, nil
}

// Format names a supported file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return Format(strings.TrimPrefix(filepath.Ext(path), "."))
	}
}

// Parse decodes data in the given format and validates it against the
// schema.
func Parse(data []byte, format Format) (*File, error) {
	var (
		f   File
		err error
	)

	switch format {
	case FormatTOML:
		err = decodeTOML(data, &f)
	case FormatYAML:
		err = decodeYAML(data, &f)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported config format %q (want .toml, .yaml or .yml)", format),
		}
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeTOML(data []byte, f *File) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	err := dec.Decode(f)
	if err == nil {
		return nil
	}

	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, col := decErr.Position()
		return &LoadError{
			Code:    ErrCodeParseFailed,
			Message: fmt.Sprintf("line %d, column %d: %s", row, col, decErr.Error()),
		}
	}

	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return &LoadError{Code: ErrCodeParseFailed, Message: "unknown field", Err: strictErr}
	}

	return &LoadError{Code: ErrCodeParseFailed, Message: "decode TOML", Err: err}
}

func decodeYAML(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(f)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &LoadError{Code: ErrCodeParseFailed, Message: "decode YAML", Err: err}
}

// ParseLevel parses a log level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ResolvePath picks the config file to load: explicit if non-empty, else
// ./Natty.toml, else natty/config.toml under the user config directory.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	candidates := []string{DefaultFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "natty", "config.toml"))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}

	return "", &LoadError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no config file found (tried %s)", strings.Join(candidates, ", ")),
	}
}
