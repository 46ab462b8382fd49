package memory_manager

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const (
	DEFAULT_KERNEL_SPACE_SIZE  = 256
	DEFAULT_VIRTUAL_SPACE_SIZE = 512
	DEFAULT_PAGE_SIZE          = 32
	DEFAULT_MAX_PROCESS_NUM    = 8
	DEFAULT_SWAP_FILE_PATH     = "swap"
)

// Config holds the sizing constants of the simulated machine.
// All size and offset arithmetic in the kernel is derived from these values.
type Config struct {

	// capacity of the physical memory pool in bytes.
	KernelSpaceSize int `json:"kernel_space_size"`

	// maximum address space size of a single process in bytes.
	VirtualSpaceSize int `json:"virtual_space_size"`

	// size of a frame, a virtual page and a swap slot in bytes.
	PageSize int `json:"page_size"`

	// maximum number of processes that can run at the same time.
	MaxProcessNum int `json:"max_process_num"`

	SwapFilePath string `json:"swap_file_path"`

	// open the swap file in DIRECT I/O mode.
	DirectIO bool `json:"direct_io"`

	LogLevel string `json:"log_level"`
}

func DefaultConfig() Config {

	return Config{
		KernelSpaceSize:  DEFAULT_KERNEL_SPACE_SIZE,
		VirtualSpaceSize: DEFAULT_VIRTUAL_SPACE_SIZE,
		PageSize:         DEFAULT_PAGE_SIZE,
		MaxProcessNum:    DEFAULT_MAX_PROCESS_NUM,
		SwapFilePath:     DEFAULT_SWAP_FILE_PATH,
		LogLevel:         "info",
	}
}

// LoadConfig decodes a JSON config file on top of the default config,
// fields missing from the file keep their default value.
func LoadConfig(filePath string) (Config, error) {

	config := DefaultConfig()

	data, err := os.ReadFile(filePath)

	if err != nil {
		slog.Error("Failed to read config file", "filePath", filePath, "error", err.Error(), "function", "LoadConfig", "at", "Config")
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		slog.Error("Failed to decode config file", "filePath", filePath, "error", err.Error(), "function", "LoadConfig", "at", "Config")
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (config Config) Validate() error {

	if config.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", config.PageSize)
	}

	if config.KernelSpaceSize <= 0 || config.KernelSpaceSize%config.PageSize != 0 {
		return fmt.Errorf("kernel space size %d must be a positive multiple of page size %d", config.KernelSpaceSize, config.PageSize)
	}

	if config.VirtualSpaceSize <= 0 || config.VirtualSpaceSize%config.PageSize != 0 {
		return fmt.Errorf("virtual space size %d must be a positive multiple of page size %d", config.VirtualSpaceSize, config.PageSize)
	}

	if config.MaxProcessNum <= 0 {
		return fmt.Errorf("max process num must be positive, got %d", config.MaxProcessNum)
	}

	if config.SwapFilePath == "" {
		return fmt.Errorf("swap file path must not be empty")
	}

	return nil
}

// ParseLogLevel maps the configured log level onto a slog level, defaulting to info.
func (config Config) ParseLogLevel() slog.Level {

	switch config.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (config Config) frameCount() int {
	return config.KernelSpaceSize / config.PageSize
}

func (config Config) slotCount() int {
	return config.MaxProcessNum * config.VirtualSpaceSize / config.PageSize
}

func (config Config) swapFileSize() int64 {
	return int64(config.MaxProcessNum) * int64(config.VirtualSpaceSize)
}
