package config

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract/model"
	"go.ytsaurus.tech/library/go/core/xerrors"
	"gopkg.in/yaml.v3"
)

func TransferFromYaml(params *string) (*model.Transfer, error) {
	rawData, err := os.ReadFile(*params)
	if err != nil {
		return nil, xerrors.Errorf("unable to read yaml config file: %w", err)
	}
	transfer, err := ParseTransfer(rawData)
	if err != nil {
		return nil, xerrors.Errorf("unable to parse yaml config to transfer: %w", err)
	}
	return transfer, nil
}

func ParseTransfer(rawData []byte) (*model.Transfer, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(rawData, &tree); err != nil {
		return nil, xerrors.Errorf("unable to parse yaml: %w", err)
	}
	tree, _ = substituteEnv(tree).(map[string]interface{})

	transfer := new(model.Transfer)
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   transfer,
		TagName:  "yaml",
	})
	if err != nil {
		return nil, xerrors.Errorf("unable to prepare decoder: %w", err)
	}
	if err := decoder.Decode(tree); err != nil {
		return nil, xerrors.Errorf("unable to decode transfer config: %w", err)
	}
	if len(md.Unused) > 0 {
		logger.Log.Infof("transfer config has %v unused fields", md.Unused)
	}

	transfer.WithDefaults()
	if err := transfer.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid transfer config: %w", err)
	}
	return transfer, nil
}

// substituteEnv recursively iterates over an interface{} (which might be a
// string, a map, or a slice) and applies os.ExpandEnv to all string values.
func substituteEnv(val interface{}) interface{} {
	switch v := val.(type) {
	case string:
		return os.ExpandEnv(v)
	case map[string]interface{}:
		for key, inner := range v {
			v[key] = substituteEnv(inner)
		}
		return v
	case []interface{}:
		for i, inner := range v {
			v[i] = substituteEnv(inner)
		}
		return v
	default:
		return v
	}
}
