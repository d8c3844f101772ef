// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

func LoadEnvFile() {
	envOnce.Do(func() {
		args := os.Args[1:]
		for i, arg := range args {
			if arg == "--env-file" && i+1 < len(args) {
				if err := loadEnvFile(args[i+1]); err != nil {
					fmt.Printf("Failed to load env file: %s\n", err)
				}
				return
			}
		}
	})
}

// loadEnvFile applies the file on top of the process environment.
func loadEnvFile(path string) error {
	fmt.Printf("Loading environment variables from file: %s\n", path)
	return godotenv.Overload(path)
}

// GetEnv returns the value of key, or the first default when it is unset or empty.
func GetEnv(key string, defaultValue ...string) string {
	LoadEnvFile()
	if v := os.Getenv(key); v != "" {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func GetEnvInt(key string, defaultValue int) int {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		Logger.Warnf("Invalid integer for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return i
}

func GetEnvBool(key string, defaultValue bool) bool {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		Logger.Warnf("Invalid boolean for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return b
}

func GetEnvDuration(key string, unit time.Duration, defaultValue int) time.Duration {
	return time.Duration(GetEnvInt(key, defaultValue)) * unit
}
