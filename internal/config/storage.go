package config

import (
	"fmt"
	"strings"
)

type Storage struct {
	Driver StorageDriver `env:"STORAGE_DRIVER" envDefault:"POSTGRES"`
	// Seed fills empty categories and suppliers with the default options on startup.
	Seed bool `env:"STORAGE_SEED" envDefault:"true"`
}

// StorageDriver selects the record storage backing the development API.
type StorageDriver uint8

const (
	StorageDriverPostgres StorageDriver = iota
	StorageDriverMemory
)

// String returns the string representation of the driver.
func (d StorageDriver) String() string {
	return []string{"POSTGRES", "MEMORY"}[d]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StorageDriver) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES":
		*d = StorageDriverPostgres
	case "MEMORY":
		*d = StorageDriverMemory
	default:
		return fmt.Errorf("unknown storage driver: %s", text)
	}
	return nil
}

func (d StorageDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
