package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads a JSON document named by the --file flag, or from stdin
// when the flag is empty and stdin is not a terminal.
type FileReader[T any] struct {
	fileFlagValue string
	stdin         *os.File
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Provided reports whether a file was given or stdin is piped.
func (fr *FileReader[T]) Provided() bool {
	return fr.fileFlagValue != "" || !term.IsTerminal(int(fr.in().Fd()))
}

func (fr *FileReader[T]) in() *os.File {
	if fr.stdin != nil {
		return fr.stdin
	}
	return os.Stdin
}

func (fr *FileReader[T]) open() (io.ReadCloser, error) {
	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	in := fr.in()
	if term.IsTerminal(int(in.Fd())) {
		return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
	}
	return io.NopCloser(in), nil
}

// Read decodes the input into T.
func (fr *FileReader[T]) Read() (T, error) {
	var input T

	raw, err := fr.ReadRaw()
	if err != nil {
		return input, err
	}

	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}

// ReadRaw returns the input bytes after checking they hold valid JSON.
func (fr *FileReader[T]) ReadRaw() ([]byte, error) {
	r, err := fr.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode JSON: input is not valid JSON")
	}
	return raw, nil
}
