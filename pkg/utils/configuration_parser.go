package utils

import (
	"os"
	"path/filepath"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"gopkg.in/yaml.v2"
)

type config interface {
	entities.GatewayConfig | entities.SensorConfig
}

func readTextFile(filepathName string) ([]byte, error) {
	fileContent, err := os.ReadFile(filepath.Clean(filepathName))
	return fileContent, err
}

// ConfigurationParser decodes the YAML file over configEntity, so fields missing from
// the file keep the values configEntity already holds.
func ConfigurationParser[T config](filepathName string, configEntity T) (T, error) {
	fileContent, err := readTextFile(filepath.Clean(filepathName))
	if err != nil {
		return configEntity, err
	}

	err = yaml.Unmarshal(fileContent, &configEntity)
	return configEntity, err
}

func GetValueFromEnvironmentVariable(variableName, defaultValue string) string {
	value := os.Getenv(variableName)
	if value != "" {
		return value
	}
	return defaultValue
}
