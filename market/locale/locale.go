// Package locale renders user-facing messages from the embedded uz and ru
// tables. Keys are dotted paths into the YAML documents.
package locale

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/surplusbot/market/domain"
)

//go:embed messages/*.yaml
var messagesFS embed.FS

// Fallback is used for unknown languages and keys missing in a table.
const Fallback = domain.LangUz

// Catalog holds the flattened message tables.
type Catalog struct {
	tables map[domain.Language]map[string]string
}

// Load parses the embedded tables.
func Load() (*Catalog, error) {
	c := &Catalog{tables: make(map[domain.Language]map[string]string)}
	for _, lang := range []domain.Language{domain.LangUz, domain.LangRu} {
		data, err := messagesFS.ReadFile("messages/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read %s messages: %w", lang, err)
		}
		table, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s messages: %w", lang, err)
		}
		c.tables[lang] = table
	}
	return c, nil
}

// MustLoad is Load for package initialisation in main and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func parse(data []byte) (map[string]string, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if err := flatten("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %s: unsupported value %T", key, v)
		}
	}
	return nil
}

// Get returns the message for key in lang, falling back to the uz table and
// finally to the key itself.
func (c *Catalog) Get(lang domain.Language, key string) string {
	if msg, ok := c.tables[lang][key]; ok {
		return msg
	}
	if msg, ok := c.tables[Fallback][key]; ok {
		return msg
	}
	return key
}

// Render returns the message for key with every {name} placeholder replaced
// from args.
func (c *Catalog) Render(lang domain.Language, key string, args map[string]string) string {
	msg := c.Get(lang, key)
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Keys lists the keys of lang in sorted order.
func (c *Catalog) Keys(lang domain.Language) []string {
	keys := make([]string, 0, len(c.tables[lang]))
	for k := range c.tables[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
