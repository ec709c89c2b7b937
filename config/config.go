// SPDX-License-Identifier: ice License 1.0

package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	applicationConfigFileName = "application.yaml"
	dotEnvLookupDepth         = 5
)

//nolint:gochecknoinits // Because we load the configs once, for the whole runtime
func init() {
	loadFirstApplicationConfigFile()
	dotEnvPath := `.env`
	for range dotEnvLookupDepth {
		if err := godotenv.Load(dotEnvPath); err == nil {
			break
		}
		dotEnvPath = fmt.Sprintf(`../%v`, dotEnvPath)
	}
}

func MustLoadFromKey(key string, cfg any) {
	if err := viper.UnmarshalKey(key, cfg); err != nil {
		log.Panic(errors.Wrapf(err, "failed to load config by key %q", key))
	}
}

// Env looks up `<APPLICATION_YAML_KEY>_<SUFFIX>` first and then the bare `<SUFFIX>`.
func Env(applicationYAMLKey, suffix string) string {
	if val := os.Getenv(EnvPrefix(applicationYAMLKey) + "_" + suffix); val != "" {
		return val
	}

	return os.Getenv(suffix)
}

func EnvPrefix(applicationYAMLKey string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", "/", "_").Replace(applicationYAMLKey))
}

func loadFirstApplicationConfigFile() {
	for _, f := range applicationConfigFiles() {
		viper.SetConfigFile(f)
		err := viper.ReadInConfig()
		if err == nil {
			return
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Panic(errors.Wrapf(err, "failed to read %v", f))
		}
	}

	log.Panic(errors.Errorf("could not find any %v files", applicationConfigFileName))
}

func applicationConfigFiles() []string {
	dirs := make([]string, 0, 1+1+1+1)
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(wd, ".testdata"), wd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, path.Dir(filepath.Join(exe, "..")))
	}
	//nolint:dogsled // Because those 3 blank identifiers are useless
	_, callerFile, _, _ := runtime.Caller(0)
	moduleRoot := filepath.Join(filepath.Dir(callerFile), "..")
	dirs = append(dirs, moduleRoot, filepath.Join(moduleRoot, ".."))

	files := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		pattern := filepath.Join(dir, applicationConfigFileName)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Println(errors.Wrapf(err, "glob failed for [%v]", pattern))

			continue
		}
		files = append(files, matches...)
	}

	return files
}
