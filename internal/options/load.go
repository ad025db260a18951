package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/ini.v1"
)

// Format is an options file syntax.
type Format int

const (
	FormatJSON Format = iota // JSON with comments and trailing commas
	FormatINI
)

func (f Format) String() string {
	if f == FormatINI {
		return "ini"
	}

	return "json"
}

// FormatOf picks the syntax from a file extension. Anything that is not
// .ini, .conf or .cfg is read as JSONC.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".conf", ".cfg":
		return FormatINI
	default:
		return FormatJSON
	}
}

// Sniff picks the syntax of in-memory text: JSONC when the first
// non-space byte is '{', INI otherwise.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}

	return FormatINI
}

// Parse overlays text of either syntax onto the defaults and validates the
// result. Empty text yields the defaults.
func Parse(data []byte) (Options, error) {
	o := Default()

	if len(bytes.TrimSpace(data)) > 0 {
		if err := apply(&o, data, Sniff(data)); err != nil {
			return Options{}, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}

func apply(o *Options, data []byte, format Format) error {
	if format == FormatINI {
		return applyINI(o, data)
	}

	return applyJSON(o, data)
}

// applyJSON unmarshals onto o, so keys absent from data keep their value.
func applyJSON(o *Options, data []byte) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}

	if err := json.Unmarshal(standardized, o); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// applyINI reads the legacy INI section layout. Section and key names are
// case-insensitive; unknown sections are ignored.
func applyINI(o *Options, data []byte) error {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return fmt.Errorf("invalid INI: %w", err)
	}

	variances := map[string]*map[string]int{
		"chiprange": &o.ChipRange,
		"navirange": &o.NaviRange,
		"bn2chips":  &o.BN2Chips,
	}

	sections := map[string]any{
		"chipglobal": &o.ChipGlobal,
		"names":      &o.Names,
		"encounters": &o.Encounters,
		"viruses":    &o.Viruses,
		"shops":      &o.Shops,
		"folders":    &o.Folders,
		"drops":      &o.Drops,
		"gmd":        &o.GMD,
		"engine":     &o.Engine,
	}

	for _, sec := range f.Sections() {
		name := sec.Name()

		if m, ok := variances[name]; ok {
			if *m == nil {
				*m = map[string]int{}
			}

			for _, k := range sec.Keys() {
				v, err := k.Int()
				if err != nil {
					return fmt.Errorf("[%s] %s: %w", name, k.Name(), err)
				}

				(*m)[canonicalField(k.Name())] = v
			}

			continue
		}

		if dst, ok := sections[name]; ok {
			if err := sec.StrictMapTo(dst); err != nil {
				return fmt.Errorf("[%s]: %w", name, err)
			}
		}
	}

	return nil
}

// canonicalField restores the camel case the INI parser lowercased.
func canonicalField(name string) string {
	for _, known := range []string{"hitChance", "dodgeChance"} {
		if strings.EqualFold(known, name) {
			return known
		}
	}

	return name
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir string            // base for relative paths; os.Getwd() when empty
	Path    string            // explicit --options file; must exist when set
	Env     map[string]string // environment variables
}

// ProjectFileName is the options file picked up from the working directory.
const ProjectFileName = "mmrando.json"

func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "mmrando", "options.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "mmrando", "options.json")
	}

	return ""
}

// Load resolves options with the following precedence (highest wins):
// 1. Defaults
// 2. Global file ($XDG_CONFIG_HOME/mmrando/options.json or ~/.config/mmrando/options.json)
// 3. Project file (./mmrando.json, if it exists)
// 4. Explicit file via Path.
//
// Each layer only overrides the keys it names. A relative chipNames path
// is resolved against the working directory.
func Load(in LoadInput) (Options, error) {
	workDir := in.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Options{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	o := Default()

	if p := globalPath(in.Env); p != "" {
		loaded, err := loadFile(&o, p, false)
		if err != nil {
			return Options{}, err
		}

		if loaded {
			o.Sources.Global = p
		}
	}

	project := filepath.Join(workDir, ProjectFileName)

	loaded, err := loadFile(&o, project, false)
	if err != nil {
		return Options{}, err
	}

	if loaded {
		o.Sources.Project = project
	}

	if in.Path != "" {
		explicit := in.Path
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(workDir, explicit)
		}

		if _, err := loadFile(&o, explicit, true); err != nil {
			return Options{}, err
		}

		o.Sources.Explicit = explicit
	}

	if o.Names.ChipNames != "" && !filepath.IsAbs(o.Names.ChipNames) {
		o.Names.ChipNames = filepath.Join(workDir, o.Names.ChipNames)
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}

func loadFile(o *Options, path string, mustExist bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}

			return false, nil
		}

		return false, fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
	}

	if err := apply(o, data, FormatOf(path)); err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	return true, nil
}
