// Package builtin provides the asset kinds the assetdb binary ships
// with. Library consumers register their own kinds instead; the CLI
// needs a concrete set so manifests are usable out of the box.
package builtin

import (
	"fmt"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/typekey"
)

// Document is a schemaless asset: a name plus whatever fields the
// manifest spec carried.
type Document struct {
	Name   string         `yaml:"name"`
	Fields map[string]any `yaml:",inline"`
}

func (d *Document) AssetName() string { return d.Name }

// File is an asset referencing content on disk.
type File struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	MediaType string `yaml:"media_type"`
}

func (f *File) AssetName() string { return f.Name }

var (
	_ asset.Asset = (*Document)(nil)
	_ asset.Asset = (*File)(nil)
)

// Kinds returns a registry holding every built-in kind.
func Kinds() *source.KindRegistry {
	kinds := source.NewKindRegistry()
	kinds.MustRegister("document", func(unmarshal func(out any) error) (asset.Asset, error) {
		var d Document
		if err := unmarshal(&d); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		return &d, nil
	})
	kinds.MustRegister("file", func(unmarshal func(out any) error) (asset.Asset, error) {
		var f File
		if err := unmarshal(&f); err != nil {
			return nil, fmt.Errorf("decode file: %w", err)
		}
		if f.Path == "" {
			return nil, fmt.Errorf("decode file: path is required")
		}
		return &f, nil
	})
	return kinds
}

// Keys maps each built-in kind to the type key its decoded assets are
// registered under.
func Keys() map[string]typekey.Key {
	return map[string]typekey.Key{
		"document": typekey.Of[Document](),
		"file":     typekey.Of[File](),
	}
}
