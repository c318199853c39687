package iojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileReader_Read(t *testing.T) {
	fr := &FileReader[sample]{fileFlagValue: writeFile(t, `{"name":"mug","n":2}`)}

	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "mug", N: 2}, got)
	assert.True(t, fr.Provided())
}

func TestFileReader_ReadRaw(t *testing.T) {
	fr := &FileReader[any]{fileFlagValue: writeFile(t, `[1,2,3]`)}

	raw, err := fr.ReadRaw()
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
}

func TestFileReader_InvalidJSON(t *testing.T) {
	fr := &FileReader[sample]{fileFlagValue: writeFile(t, `{"name":`)}

	_, err := fr.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

func TestFileReader_MissingFile(t *testing.T) {
	fr := &FileReader[sample]{fileFlagValue: filepath.Join(t.TempDir(), "missing.json")}

	_, err := fr.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestFileReader_Stdin(t *testing.T) {
	path := writeFile(t, `{"name":"lamp","n":1}`)
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	fr := &FileReader[sample]{stdin: f}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, sample{Name: "Salt & Pepper", N: 1}))
	assert.JSONEq(t, `{"name":"Salt & Pepper","n":1}`, out.String())
	assert.Contains(t, out.String(), "Salt & Pepper", "HTML characters are not escaped")
	assert.Empty(t, errOut.String())
}

func TestWriteWith_EncodeFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]any{"bad": func() {}})
	require.Error(t, err)
	assert.Empty(t, out.String())

	var doc Error
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &doc))
	assert.Equal(t, "encode output", doc.Message)
	assert.Contains(t, doc.Data, "json_error")
}
