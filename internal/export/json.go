// Package export writes and reads intermediate day records as JSON and
// writes activities as CSV.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/timetracer/internal/model"
)

// ToJSON writes days to path as an indented JSON array.
func ToJSON(days []model.Day, path string) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, days); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

func WriteJSON(w io.Writer, days []model.Day) error {
	if days == nil {
		days = []model.Day{}
	}
	data, err := json.MarshalIndent(days, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ReadJSON decodes a day array. Unknown fields are ignored so files from
// other producers still load.
func ReadJSON(r io.Reader) ([]model.Day, error) {
	var days []model.Day
	if err := json.NewDecoder(r).Decode(&days); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return days, nil
}

func LoadJSON(path string) ([]model.Day, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json file: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}
