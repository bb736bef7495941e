package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the construction-time parameters of a system. The cache and
// predictor geometries are fixed by the design; what varies per run is the
// boot image and the harness limits.
type Config struct {
	// BootImage is the path of the hex boot image loaded into memory at
	// BootBase before the first tick. Empty means start with bare memory,
	// which reads as no-op instructions everywhere.
	BootImage string `json:"boot_image"`

	// BootBase is the load address of the boot image. The reset vector is
	// address zero, so a bootable image normally loads there.
	BootBase uint32 `json:"boot_base"`

	// MaxTicks bounds a Run invocation. Zero means the harness default.
	MaxTicks uint64 `json:"max_ticks"`

	// UARTInput is queued on the UART receive side before the first tick.
	UARTInput string `json:"uart_input"`
}

// DefaultConfig returns the standard configuration: boot from address zero,
// one million ticks.
func DefaultConfig() Config {
	return Config{
		MaxTicks: 1000000,
	}
}

// LoadConfig reads a configuration file, applying defaults for absent
// fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
