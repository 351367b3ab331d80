package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ConfigsDir    string
	TargetsDir    string
	RunsDBDSN     string
	LogLevel      string
	BatchSize     int
	ModulusFactor int
}

// Load reads configuration from the environment, with a .env file in the
// working directory supplying values for variables that are unset.
func Load() *Config {
	env := loadDotEnv(".env")

	return &Config{
		ConfigsDir:    getEnv(env, "DBFILL_CONFIGS_DIR", "./configs"),
		TargetsDir:    getEnv(env, "DBFILL_TARGETS_DIR", "./targets"),
		RunsDBDSN:     getEnv(env, "DBFILL_RUNS_DB", "./dbfill-runs.sqlite"),
		LogLevel:      getEnv(env, "DBFILL_LOG_LEVEL", "info"),
		BatchSize:     getEnvInt(env, "DBFILL_BATCH_SIZE", 1000),
		ModulusFactor: getEnvInt(env, "DBFILL_MODULUS_FACTOR", 10),
	}
}

func getEnv(dotenv map[string]string, key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := dotenv[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(dotenv map[string]string, key string, defaultValue int) int {
	raw := getEnv(dotenv, key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func loadDotEnv(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	env := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		env[strings.TrimSpace(key)] = value
	}
	return env
}
