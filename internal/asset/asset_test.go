package asset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/typekey"
)

type plain struct{ name string }

func (p *plain) AssetName() string { return p.name }

type ancestored struct {
	plain
	ancestors []typekey.Key
}

func (a *ancestored) Ancestors() []typekey.Key { return a.ancestors }

func TestKeysFor_PlainPayload(t *testing.T) {
	keys, err := asset.KeysFor(&plain{name: "p"})
	require.NoError(t, err)
	require.Equal(t, []typekey.Key{typekey.Of[plain]()}, keys)
}

func TestKeysFor_AncestoredPayload(t *testing.T) {
	super := typekey.Of[asset.Asset]()
	other := typekey.Of[plain]()

	keys, err := asset.KeysFor(&ancestored{
		plain:     plain{name: "a"},
		ancestors: []typekey.Key{super, other},
	})
	require.NoError(t, err)
	require.Equal(t, []typekey.Key{typekey.Of[ancestored](), super, other}, keys)
}

func TestKeysFor_EmptyAncestors(t *testing.T) {
	keys, err := asset.KeysFor(&ancestored{plain: plain{name: "a"}})
	require.NoError(t, err)
	require.Equal(t, []typekey.Key{typekey.Of[ancestored]()}, keys)
}

func TestKeysFor_NilPayload(t *testing.T) {
	_, err := asset.KeysFor(nil)
	require.ErrorIs(t, err, typekey.ErrNilType)
}
