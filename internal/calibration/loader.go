package calibration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"traincast/internal/models"
)

// LoadOverrides reads a calibration override file (YAML). Missing file
// is an error; an empty file yields an empty override set.
func LoadOverrides(path string) (*models.Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calibration file: %w", err)
	}
	var c models.Calibration
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing calibration file %s: %w", path, err)
	}
	return &c, nil
}
