package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// Extension is a file-declared set of extra entity types and contexts.
type Extension struct {
	Types    []EntityType `json:"types" yaml:"types"`
	Contexts []Context    `json:"contexts" yaml:"contexts"`
}

// LoadQuestionsFromFile reads a JSON or YAML array of model.Question from the
// given path.
func LoadQuestionsFromFile(path string) ([]model.Question, error) {
	var questions []model.Question
	if err := decodeFile(path, &questions); err != nil {
		return nil, eris.Wrap(err, "registry: load questions fixture")
	}
	return questions, nil
}

// LoadExtensionFile reads an Extension and layers it over base.
func LoadExtensionFile(base *Registry, path string) (*Registry, error) {
	var ext Extension
	if err := decodeFile(path, &ext); err != nil {
		return nil, eris.Wrap(err, "registry: load extension")
	}
	r, err := base.Extend(ext.Types, ext.Contexts)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: apply extension %s", path)
	}
	return r, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return eris.Wrapf(err, "unmarshal yaml %s", path)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return eris.Wrapf(err, "unmarshal json %s", path)
		}
	}
	return nil
}
