package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type MemConfig struct {
	Config map[string]string
}

func (mc *MemConfig) Get(key string) (string, error) {
	if val, ok := mc.Config[key]; ok {
		return val, nil
	}
	return "", nil
}

func (mc *MemConfig) Set(key, value string) {
	if mc.Config == nil {
		mc.Config = make(map[string]string)
	}

	mc.Config[key] = value
}

type MemLogger struct {
	Debugs []string
	Infos  []string
	Warns  []string
	Errors []string
}

func (ml *MemLogger) Debugf(str string, args ...interface{}) {
	ml.Debugs = append(ml.Debugs, fmt.Sprintf(str, args...))
}

func (ml *MemLogger) Infof(str string, args ...interface{}) {
	ml.Infos = append(ml.Infos, fmt.Sprintf(str, args...))
}

func (ml *MemLogger) Warnf(str string, args ...interface{}) {
	ml.Warns = append(ml.Warns, fmt.Sprintf(str, args...))
}

func (ml *MemLogger) Errorf(str string, args ...interface{}) {
	ml.Errors = append(ml.Errors, fmt.Sprintf(str, args...))
}

func (ml *MemLogger) WithFields(fields map[string]interface{}) Logger {
	return ml
}

type MemRunner struct {
	History  []string
	Envs     [][]string
	Outputs  map[string]string
	Failures map[string]error
}

func (mr *MemRunner) RunCommand(ctx context.Context, env []string, command string, args []string) (string, error) {
	line := strings.Join(append([]string{command}, args...), " ")
	mr.History = append(mr.History, line)
	mr.Envs = append(mr.Envs, env)

	if err, ok := mr.Failures[line]; ok {
		return "", err
	}
	return mr.Outputs[line], nil
}

type MemSystem struct {
	Env       map[string]string
	Files     map[string][]byte
	Failures  map[string]error
	Unpacked  []string
	Time      time.Time
	StdoutBuf bytes.Buffer
	StderrBuf bytes.Buffer
}

func NewMemSystem() *MemSystem {
	return &MemSystem{
		Env:      make(map[string]string),
		Files:    make(map[string][]byte),
		Failures: make(map[string]error),
		Time:     time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC),
	}
}

func (ms *MemSystem) Setenv(key, value string) {
	ms.Env[key] = value
}

func (ms *MemSystem) Getenv(key string) string {
	return ms.Env[key]
}

func (ms *MemSystem) FileExists(localPath string) bool {
	_, ok := ms.Files[localPath]
	return ok
}

func (ms *MemSystem) ReadFile(localPath string) ([]byte, error) {
	data, ok := ms.Files[localPath]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: localPath, Err: os.ErrNotExist}
	}
	return data, nil
}

func (ms *MemSystem) WriteFileAtomic(localPath string, data []byte) error {
	if err, ok := ms.Failures[localPath]; ok {
		return err
	}
	ms.Files[localPath] = data
	return nil
}

func (ms *MemSystem) Glob(pattern string) ([]string, error) {
	matches := []string{}
	for name := range ms.Files {
		if ok, err := filepath.Match(pattern, name); err != nil {
			return nil, err
		} else if ok {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func (ms *MemSystem) Now() time.Time {
	return ms.Time
}

func (ms *MemSystem) Stderrf(message string, args ...interface{}) {
	fmt.Fprintf(&ms.StderrBuf, message, args...)
}

func (ms *MemSystem) Stdoutf(message string, args ...interface{}) {
	fmt.Fprintf(&ms.StdoutBuf, message, args...)
}

func (ms *MemSystem) UnpackArchive(archive, destPath string) error {
	ms.Unpacked = append(ms.Unpacked, archive+" -> "+destPath)
	return nil
}

func (ms *MemSystem) WriteString(localPath, content string) {
	ms.Files[localPath] = []byte(content)
}

func (ms *MemSystem) ReadString(localPath string) string {
	return string(ms.Files[localPath])
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}
