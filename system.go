package main

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sirupsen/logrus"
	"github.com/justone/archiver"
	"github.com/pkg/errors"
)

type System interface {
	Getenv(string) string
	FileExists(string) bool
	ReadFile(string) ([]byte, error)
	WriteFileAtomic(string, []byte) error
	Glob(string) ([]string, error)
	Now() time.Time
	Stderrf(string, ...interface{})
	Stdoutf(string, ...interface{})
	UnpackArchive(string, string) error
}

type DefaultSystem struct{}

func (ds DefaultSystem) Getenv(key string) string {
	return os.Getenv(key)
}

func (ds DefaultSystem) FileExists(localPath string) bool {
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		return false
	}
	return true
}

func (ds DefaultSystem) ReadFile(localPath string) ([]byte, error) {
	return ioutil.ReadFile(localPath)
}

// WriteFileAtomic writes data to a temporary file next to localPath and
// renames it into place, so readers see either the old file or the new one.
func (ds DefaultSystem) WriteFileAtomic(localPath string, data []byte) error {
	dir := filepath.Dir(localPath)
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(localPath)+".")
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	tmpPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "unable to write temporary file")
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "unable to close temporary file")
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "unable to set permissions")
	}
	if err = os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "unable to move file into place")
	}

	return nil
}

func (ds DefaultSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (ds DefaultSystem) Now() time.Time {
	return time.Now()
}

func (ds DefaultSystem) Stderrf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
}

func (ds DefaultSystem) Stdoutf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, message, args...)
}

func (ds DefaultSystem) UnpackArchive(archive, destPath string) error {
	for _, format := range archiver.SupportedFormats {
		if format.Match(archive) {
			err := format.Open(archive, destPath)
			if err != nil {
				return errors.Wrap(err, "error unpacking archive")
			}
			return nil
		}
	}

	return fmt.Errorf("archive format not supported: %s", archive)
}

type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	WithFields(map[string]interface{}) Logger
}

type LogrusLogger struct {
	entry *logrus.Entry
}

func (ll LogrusLogger) logger() *logrus.Entry {
	if ll.entry == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return ll.entry
}

func (ll LogrusLogger) Debugf(str string, args ...interface{}) {
	ll.logger().Debugf(str, args...)
}

func (ll LogrusLogger) Infof(str string, args ...interface{}) {
	ll.logger().Infof(str, args...)
}

func (ll LogrusLogger) Warnf(str string, args ...interface{}) {
	ll.logger().Warnf(str, args...)
}

func (ll LogrusLogger) Errorf(str string, args ...interface{}) {
	ll.logger().Errorf(str, args...)
}

func (ll LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return LogrusLogger{entry: ll.logger().WithFields(logrus.Fields(fields))}
}

type Runner interface {
	RunCommand(ctx context.Context, env []string, command string, args []string) (string, error)
}

type DefaultRunner struct {
	Logger
}

// RunCommand runs command to completion and returns its trimmed standard
// output. On failure the returned error carries the trimmed standard error.
func (dr DefaultRunner) RunCommand(ctx context.Context, env []string, command string, args []string) (string, error) {
	dr.Debugf("Running command %s with args %v", command, args)

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		return out, errors.Wrapf(err, "%s failed: %s", command, strings.TrimSpace(stderr.String()))
	}

	// some tools, Rscript --version among them, report on stderr only
	if len(out) == 0 {
		out = strings.TrimSpace(stderr.String())
	}
	return out, nil
}
