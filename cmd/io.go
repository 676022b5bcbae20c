package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// readText returns the joined args, or the contents of file ("-" is stdin).
func readText(args []string, file string, stdin io.Reader) (string, error) {
	if file == "" {
		if len(args) == 0 {
			return "", eris.New("no input text: pass it as arguments or use --file")
		}
		return strings.Join(args, " "), nil
	}
	data, err := readFile(file, stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return data, eris.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	return data, eris.Wrapf(err, "read %s", path)
}

func readContract(path string, stdin io.Reader) (model.Contract, error) {
	var c model.Contract
	data, err := readFile(path, stdin)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, eris.Wrapf(err, "decode contract %s", path)
	}
	return c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
