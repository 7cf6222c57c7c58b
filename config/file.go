package config

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adhocore/jsonc"
	"github.com/friendsofgo/errors"
	"gopkg.in/yaml.v3"
)

type fileFormat int

const (
	formatJSON fileFormat = iota
	formatJSON5
	formatYAML
)

var extensionFormats = map[string]fileFormat{
	".json":  formatJSON,
	".json5": formatJSON5,
	".yaml":  formatYAML,
	".yml":   formatYAML,
}

// searched in this order when the config path has no extension
var searchExtensions = []string{".json", ".json5", ".yaml", ".yml"}

// ReadFileAsJSON reads a json, json5 or yaml config file and returns it as plain json.
// A path without extension must match exactly one of the supported extensions.
func ReadFileAsJSON(path string) ([]byte, error) {
	searchFs := os.DirFS(filepath.Dir(path))
	name := filepath.Base(path)

	if filepath.Ext(name) == "" {
		found, err := findConfigPath(searchFs, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to find config file %s", path)
		}
		name = found
	}

	format, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported config file extension %s, use one of %s", filepath.Ext(name), strings.Join(searchExtensions, ", "))
	}

	f, err := searchFs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config file %s", path)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	return toJSON(data, format)
}

func toJSON(data []byte, format fileFormat) ([]byte, error) {
	switch format {
	case formatJSON:
		return data, nil
	case formatJSON5:
		return jsonc.New().Strip(data), nil
	case formatYAML:
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to parse yaml config")
		}
		if doc == nil {
			doc = map[string]any{}
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert yaml config to json")
		}
		return out, nil
	default:
		panic("programming error: unknown config format")
	}
}

// findConfigPath tries every supported extension
// returns an error if more than one is found
// returns os.ErrNotExist if none are found
func findConfigPath(searchFs fs.FS, name string) (string, error) {
	var found []string
	for _, ext := range searchExtensions {
		candidate := name + ext
		info, err := fs.Stat(searchFs, candidate)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return "", errors.Wrapf(err, "failed to get info on %s", candidate)
			}
			continue
		}

		if info.IsDir() {
			return "", fmt.Errorf("expected config file, but found directory %s", candidate)
		}
		found = append(found, candidate)
	}

	switch len(found) {
	case 0:
		return "", errors.Wrapf(os.ErrNotExist, "none of %s%s was found", name, strings.Join(searchExtensions, "|"))
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("multiple config files were found (%s). choose one", strings.Join(found, ", "))
	}
}
