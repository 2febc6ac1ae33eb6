package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/viant/docstore/vector"
)

// Item is one piece of content as authored in a content file.
type Item struct {
	ID       string            `json:"id" yaml:"id"`
	Content  string            `json:"content" yaml:"content"`
	Subject  string            `json:"subject,omitempty" yaml:"subject,omitempty"`
	Grade    string            `json:"grade,omitempty" yaml:"grade,omitempty"`
	Topic    string            `json:"topic,omitempty" yaml:"topic,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Document builds the stored document for the item. Subject, grade and
// topic are folded into metadata and take precedence over same-named keys.
func (it Item) Document(embedding []float32) vector.Document {
	var meta map[string]string
	if len(it.Metadata) > 0 || it.Subject != "" || it.Grade != "" || it.Topic != "" {
		meta = make(map[string]string, len(it.Metadata)+3)
		for k, v := range it.Metadata {
			meta[k] = v
		}
		for k, v := range map[string]string{"subject": it.Subject, "grade": it.Grade, "topic": it.Topic} {
			if v != "" {
				meta[k] = v
			}
		}
	}
	return vector.Document{ID: it.ID, Content: it.Content, Embedding: embedding, Metadata: meta}
}

type itemFile struct {
	Items []Item `json:"items" yaml:"items"`
}

// LoadFile reads items from a .yaml, .yml or .json file. The file holds
// either a list of items or an object with an items list. Items without an
// ID get one derived from the path and their position.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var items []Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		items, err = decodeJSON(data)
	case ".yaml", ".yml":
		items, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("ingest: %s: unsupported file type", path)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = DeriveID(path, i)
		}
	}
	return items, nil
}

func decodeJSON(data []byte) ([]Item, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []Item
		err := json.Unmarshal(data, &items)
		return items, err
	}
	var f itemFile
	err := json.Unmarshal(data, &f)
	return f.Items, err
}

func decodeYAML(data []byte) ([]Item, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var items []Item
		err := node.Decode(&items)
		return items, err
	}
	var f itemFile
	err := node.Decode(&f)
	return f.Items, err
}

// DeriveID returns a stable ID for the item at index in path.
func DeriveID(path string, index int) string {
	sum := sha1.Sum([]byte(filepath.ToSlash(path) + "#" + strconv.Itoa(index)))
	return hex.EncodeToString(sum[:8])
}

// LoadPaths expands each pattern with filepath.Glob and loads every
// matching file. Matched directories are walked for content files. Files
// are read in lexical order.
func LoadPaths(patterns ...string) ([]Item, error) {
	var files []string
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("ingest: bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("ingest: stat %s: %w", m, err)
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			err = filepath.WalkDir(m, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isContentFile(p) {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("ingest: walk %s: %w", m, err)
			}
		}
	}
	sort.Strings(files)

	var out []Item
	for _, f := range files {
		items, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func isContentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
