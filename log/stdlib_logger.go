// SPDX-License-Identifier: ice License 1.0
//go:build !zerolog

package log

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ice-blockchain/vero/config"
)

// .
var (
	//nolint:gochecknoglobals // Static lookup.
	levels = map[string]int{"trace": 0, "debug": 1, "info": 2, "warn": 3, "error": 4, "fatal": 5, "panic": 6}
	//nolint:gochecknoglobals // Immutable singleton.
	appCfg cfg
)

//nolint:gochecknoinits // log is global, so it's initialization can be done in init
func init() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix | log.LUTC | log.Llongfile | log.Lmicroseconds)
	config.MustLoadFromKey(applicationYAMLKey, &appCfg)
}

func printf(level, msg string, fields ...any) {
	format := strings.Repeat(" %v", len(fields))
	vals := make([]any, 0, len(fields)+1)
	vals = append(vals, msg)
	vals = append(vals, fields...)

	//nolint:errcheck,revive // Nothing to do if we can't log.
	log.Output(3, fmt.Sprintf(level+":%v"+format, vals...))
}

func Error(err error, fields ...any) {
	if err == nil {
		return
	}
	printf("ERROR", err.Error(), fields...)
}

func Debug(msg string, fields ...any) {
	if enabled("debug") {
		printf("DEBUG", msg, fields...)
	}
}

func Info(msg string, fields ...any) {
	if enabled("info") {
		printf("INFO", msg, fields...)
	}
}

func Warn(msg string, fields ...any) {
	if enabled("warn") {
		printf("WARN", msg, fields...)
	}
}

func enabled(level string) bool {
	configured, found := levels[strings.ToLower(appCfg.Level)]
	if !found {
		configured = levels["info"]
	}

	return levels[level] >= configured
}

func Fatal(anything any, fields ...any) {
	if anything == nil {
		return
	}
	defer os.Exit(1)
	Error(asError(anything), fields...)
}

func Panic(anything any, fields ...any) {
	if anything == nil {
		return
	}
	defer func() {
		panic(anything)
	}()
	Error(asError(anything), fields...)
}

func Level() string {
	return appCfg.Level
}
