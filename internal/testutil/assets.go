// Package testutil provides asset fixtures, manifest builders, and
// database helpers shared by tests across the module.
package testutil

import (
	"fmt"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/typekey"
)

// Item is the fixture hierarchy root: every test asset is an Item.
type Item interface {
	asset.Asset
	Weight() int
}

// Weapon narrows Item to assets that deal damage.
type Weapon interface {
	Item
	Damage() int
}

// Sword is a concrete Weapon. Its capability set covers Weapon and Item,
// so key-run queries for either supertype find it.
type Sword struct {
	Name string `yaml:"name"`
	Dmg  int    `yaml:"damage"`
	Mass int    `yaml:"weight"`
}

func (s *Sword) AssetName() string { return s.Name }
func (s *Sword) Weight() int       { return s.Mass }
func (s *Sword) Damage() int       { return s.Dmg }

func (s *Sword) Ancestors() []typekey.Key {
	return []typekey.Key{typekey.Of[Weapon](), typekey.Of[Item]()}
}

// Shield is a concrete Item that deliberately does not implement
// Ancestored: it tests the plain, self-key-only insertion path.
type Shield struct {
	Name  string `yaml:"name"`
	Block int    `yaml:"block"`
	Mass  int    `yaml:"weight"`
}

func (s *Shield) AssetName() string { return s.Name }
func (s *Shield) Weight() int       { return s.Mass }

// Crate is a container payload wrapping component assets. The loader
// unwraps it to a configured component type.
type Crate struct {
	Name     string
	Contents []asset.Asset
}

func (c *Crate) AssetName() string { return c.Name }

func (c *Crate) Component(key typekey.Key) (asset.Asset, bool) {
	for _, item := range c.Contents {
		k, err := typekey.FromValue(item)
		if err != nil {
			continue
		}
		if k == key {
			return item, true
		}
	}
	return nil, false
}

var (
	_ Weapon           = (*Sword)(nil)
	_ asset.Ancestored = (*Sword)(nil)
	_ Item             = (*Shield)(nil)
	_ asset.Container  = (*Crate)(nil)
)

// NewKinds returns a kind registry covering the fixture types.
func NewKinds() *source.KindRegistry {
	kinds := source.NewKindRegistry()
	kinds.MustRegister("sword", func(unmarshal func(out any) error) (asset.Asset, error) {
		var s Sword
		if err := unmarshal(&s); err != nil {
			return nil, fmt.Errorf("decode sword: %w", err)
		}
		return &s, nil
	})
	kinds.MustRegister("shield", func(unmarshal func(out any) error) (asset.Asset, error) {
		var s Shield
		if err := unmarshal(&s); err != nil {
			return nil, fmt.Errorf("decode shield: %w", err)
		}
		return &s, nil
	})
	return kinds
}
