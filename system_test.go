package main

import (
	"context"
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	assert := assert.New(t)

	ds := DefaultSystem{}

	tempdir, _ := ioutil.TempDir("", "dir")
	defer os.RemoveAll(tempdir)

	filePath := path.Join(tempdir, "file")
	assert.False(ds.FileExists(filePath))
	os.Mkdir(filePath, 0755)
	assert.True(ds.FileExists(filePath))

	os.Setenv("AIDAILY_TEST_VALUE", "set")
	defer os.Unsetenv("AIDAILY_TEST_VALUE")
	assert.Equal("set", ds.Getenv("AIDAILY_TEST_VALUE"))
}

func TestWriteFileAtomic(t *testing.T) {
	assert := assert.New(t)

	ds := DefaultSystem{}

	tempdir, _ := ioutil.TempDir("", "atomic")
	defer os.RemoveAll(tempdir)

	filePath := path.Join(tempdir, "index.html")
	assert.Nil(ds.WriteFileAtomic(filePath, []byte("first")))
	assert.Nil(ds.WriteFileAtomic(filePath, []byte("second")))

	data, err := ds.ReadFile(filePath)
	assert.Nil(err)
	assert.Equal("second", string(data))

	info, err := os.Stat(filePath)
	assert.Nil(err)
	assert.Equal(os.FileMode(0644), info.Mode().Perm())

	// no temporary files are left behind
	entries, _ := ioutil.ReadDir(tempdir)
	assert.Len(entries, 1)

	// a missing directory fails without creating anything
	err = ds.WriteFileAtomic(path.Join(tempdir, "missing", "page.html"), []byte("x"))
	assert.NotNil(err)
	entries, _ = ioutil.ReadDir(tempdir)
	assert.Len(entries, 1)
}

func TestGlob(t *testing.T) {
	assert := assert.New(t)

	ds := DefaultSystem{}

	tempdir, _ := ioutil.TempDir("", "glob")
	defer os.RemoveAll(tempdir)

	ioutil.WriteFile(path.Join(tempdir, "trend.png"), []byte("png"), 0644)
	ioutil.WriteFile(path.Join(tempdir, "README"), []byte("readme"), 0644)

	matches, err := ds.Glob(path.Join(tempdir, "*.*"))
	assert.Nil(err)
	assert.Equal([]string{path.Join(tempdir, "trend.png")}, matches)
}

func TestDefaultRunner(t *testing.T) {
	assert := assert.New(t)

	dr := DefaultRunner{&MemLogger{}}
	ctx := context.Background()

	out, err := dr.RunCommand(ctx, nil, "sh", []string{"-c", "echo hello"})
	assert.Nil(err)
	assert.Equal("hello", out)

	out, err = dr.RunCommand(ctx, []string{"AIDAILY_RUNNER=from-env"}, "sh", []string{"-c", "echo $AIDAILY_RUNNER"})
	assert.Nil(err)
	assert.Equal("from-env", out)

	out, err = dr.RunCommand(ctx, nil, "sh", []string{"-c", "echo version 4.3.1 >&2"})
	assert.Nil(err)
	assert.Equal("version 4.3.1", out)

	_, err = dr.RunCommand(ctx, nil, "sh", []string{"-c", "echo broken >&2; exit 3"})
	assert.NotNil(err)
	assert.Contains(err.Error(), "broken")
}
