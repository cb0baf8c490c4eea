package watchlist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a watchlist YAML file and returns it with the raw bytes.
// ⭐ SSOT: KnownFields(true) so a misspelled key fails the load
func Load(path string) (*File, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read watchlist: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return f, data, nil
}

// Parse decodes and validates watchlist YAML
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	normalize(&f)

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Hash returns the SHA256 of the canonical JSON form.
// Struct fields keep the encoding order stable.
func Hash(f *File) (string, error) {
	jsonBytes, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

func normalize(f *File) {
	f.Schedule = strings.TrimSpace(f.Schedule)
	f.Meta.Timezone = strings.TrimSpace(f.Meta.Timezone)
	for i := range f.Entries {
		f.Entries[i].Company = strings.TrimSpace(f.Entries[i].Company)
		f.Entries[i].Ticker = strings.ToUpper(strings.TrimSpace(f.Entries[i].Ticker))
	}
}
