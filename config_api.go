package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kardianos/osext"
	ini "gopkg.in/ini.v1"
)

type ConfigClient interface {
	GetAll() (map[string]string, error)
	Unset(system bool, key string) error
	Set(system bool, key, value string) error
	Get(key string) (string, error)
}

type ConfigGetter interface {
	Get(key string) (string, error)
}

// RealConfigClient layers configuration sources. Later sources win:
// system file, user file, .env files, then the process environment.
type RealConfigClient struct {
	System
	systemConfig string
	userConfig   string
	dotenvFiles  []string
}

func (rcc *RealConfigClient) Set(system bool, key, value string) error {
	configPath := rcc.configPath(system)

	cfg, err := ini.LooseLoad(configPath)
	if err != nil {
		return fmt.Errorf("error: %v", err)
	}

	section, k := splitKey(key)

	_, err = cfg.Section(section).NewKey(k, value)
	if err != nil {
		return fmt.Errorf("unable to set new key: %v", err)
	}

	err = cfg.SaveToIndent(configPath, "    ")
	if err != nil {
		return fmt.Errorf("unable to save: %v", err)
	}

	return nil
}

func (rcc *RealConfigClient) Unset(system bool, key string) error {
	configPath := rcc.configPath(system)

	cfg, err := ini.LooseLoad(configPath)
	if err != nil {
		return fmt.Errorf("error: %v", err)
	}

	section, k := splitKey(key)

	cfg.Section(section).DeleteKey(k)
	if len(cfg.Section(section).Keys()) == 0 {
		cfg.DeleteSection(section)
	}

	err = cfg.SaveToIndent(configPath, "    ")
	if err != nil {
		return fmt.Errorf("unable to save: %v", err)
	}

	return nil
}

func (rcc *RealConfigClient) Get(key string) (string, error) {
	if val := rcc.Getenv(envName(key)); len(val) > 0 {
		return val, nil
	}

	env, err := rcc.loadDotenv()
	if err != nil {
		return "", err
	}
	if val := env[envName(key)]; len(val) > 0 {
		return val, nil
	}

	cfg, err := ini.LooseLoad(rcc.systemConfig, rcc.userConfig)
	if err != nil {
		return "", fmt.Errorf("failure to load config: %v", err)
	}

	section, k := splitKey(key)
	ck := cfg.Section(section).Key(k)

	return ck.Value(), nil
}

// GetAll lists the config file keys, overlaid with the .env entries and
// with any process environment value that overrides a listed key.
func (rcc *RealConfigClient) GetAll() (map[string]string, error) {
	all := make(map[string]string)

	cfg, err := ini.LooseLoad(rcc.systemConfig, rcc.userConfig)
	if err != nil {
		return all, fmt.Errorf("failure to load config: %v", err)
	}

	for _, section := range cfg.Sections() {
		if len(section.Keys()) > 0 {
			for _, key := range section.Keys() {
				all[fmt.Sprintf("%s.%s", section.Name(), key.Name())] = key.Value()
			}
		}
	}

	env, err := rcc.loadDotenv()
	if err != nil {
		return all, err
	}
	for name, value := range env {
		if len(value) > 0 {
			all[configKey(name)] = value
		}
	}

	for key := range all {
		if val := rcc.Getenv(envName(key)); len(val) > 0 {
			all[key] = val
		}
	}

	return all, nil
}

func (rcc *RealConfigClient) configPath(system bool) string {
	if system {
		return rcc.systemConfig
	}
	return rcc.userConfig
}

// loadDotenv reads the .env files with dotenv syntax. The file closest to
// the working directory wins.
func (rcc *RealConfigClient) loadDotenv() (map[string]string, error) {
	env := make(map[string]string)
	for _, file := range rcc.dotenvFiles {
		data, err := rcc.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failure to read %s: %v", file, err)
		}

		values, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failure to parse %s: %v", file, err)
		}

		for name, value := range values {
			if _, ok := env[name]; !ok {
				env[name] = value
			}
		}
	}
	return env, nil
}

func splitKey(key string) (string, string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) < 2 {
		return "", parts[0]
	}

	return parts[0], parts[1]
}

// envName maps a config key such as qualtrics.api_token to the environment
// variable that overrides it, QUALTRICS_API_TOKEN.
func envName(key string) string {
	return strings.ToUpper(strings.Replace(key, ".", "_", -1))
}

// configKey is the inverse of envName for keys whose section has no
// underscore: NINJA_PASSWORD becomes ninja.password.
func configKey(name string) string {
	parts := strings.SplitN(strings.ToLower(name), "_", 2)
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

func NewDefaultConfigClient(system System) (*RealConfigClient, error) {
	var baseDir string
	if xdgConfigHome := system.Getenv("XDG_CONFIG_HOME"); len(xdgConfigHome) > 0 {
		baseDir = filepath.Join(xdgConfigHome, "aidaily")
	} else {
		var home string
		if home = system.Getenv("HOME"); len(home) == 0 {
			return nil, fmt.Errorf("$HOME environment variable not found")
		}
		baseDir = filepath.Join(home, ".config", "aidaily")
		os.MkdirAll(baseDir, 0755)
	}

	systemHome := "/etc"
	if systemEnv := system.Getenv("AIDAILY_SYSTEM_CONFIG"); len(systemEnv) > 0 {
		systemHome = systemEnv
	}

	var err error
	systemConfigPath := filepath.Join(systemHome, "aidailyconfig")
	if system.FileExists(systemConfigPath) {
		systemConfigPath, err = filepath.EvalSymlinks(systemConfigPath)
		if err != nil {
			return nil, err
		}
	}

	userConfigPath := filepath.Join(baseDir, "config")
	if system.FileExists(userConfigPath) {
		userConfigPath, err = filepath.EvalSymlinks(userConfigPath)
		if err != nil {
			return nil, err
		}
	}

	configClient := RealConfigClient{
		System:       system,
		systemConfig: systemConfigPath,
		userConfig:   userConfigPath,
		dotenvFiles:  findDotenvFiles(system),
	}

	return &configClient, nil
}

// findDotenvFiles returns the .env files to consult, nearest first: the
// working directory, then the directory holding the executable.
func findDotenvFiles(system System) []string {
	candidates := []string{}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, ".env"))
	}
	if exeDir, err := osext.ExecutableFolder(); err == nil {
		candidates = append(candidates, filepath.Join(exeDir, ".env"))
	}

	files := []string{}
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		if seen[candidate] || !system.FileExists(candidate) {
			continue
		}
		seen[candidate] = true
		files = append(files, candidate)
	}
	return files
}
