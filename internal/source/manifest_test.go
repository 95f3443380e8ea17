package source_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/testutil"
)

// collect drains a fetch synchronously and returns the delivered assets.
func collect(t *testing.T, src source.Source, label string) []asset.Asset {
	t.Helper()

	var (
		mu    sync.Mutex
		items []asset.Asset
	)
	h, err := src.FetchByLabel(context.Background(), label,
		func(a asset.Asset) {
			mu.Lock()
			items = append(items, a)
			mu.Unlock()
		}, nil)
	require.NoError(t, err)
	require.True(t, src.IsValid(h))

	src.WaitForCompletion(h)
	return items
}

func TestManifestSource_FetchByLabel(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	items := collect(t, src, "core")
	require.Len(t, items, 3)

	names := make(map[string]bool)
	for _, it := range items {
		names[it.AssetName()] = true
	}
	require.True(t, names["broadsword"])
	require.True(t, names["rapier"])
	require.True(t, names["tower-shield"])
}

func TestManifestSource_LabelScoping(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	items := collect(t, src, "melee")
	require.Len(t, items, 1)
	require.Equal(t, "broadsword", items[0].AssetName())
}

func TestManifestSource_UnknownLabelIsEmptyNotError(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	done := false
	h, err := src.FetchByLabel(context.Background(), "no-such-label", nil, func() { done = true })
	require.NoError(t, err)
	src.WaitForCompletion(h)

	require.True(t, done)
	require.InDelta(t, 1.0, src.PercentComplete(h), 1e-9)
}

func TestManifestSource_UnknownKindDropsAsset(t *testing.T) {
	const manifest = `
assets:
  - name: mystery
    kind: artifact
    labels: [core]
    spec: {}
  - name: rapier
    kind: sword
    labels: [core]
    spec:
      name: rapier
      damage: 7
      weight: 2
`
	path := testutil.WriteManifest(t, manifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	items := collect(t, src, "core")
	require.Len(t, items, 1)
	require.Equal(t, "rapier", items[0].AssetName())
}

func TestManifestSource_DecodeCacheSharesInstances(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	first := collect(t, src, "melee")
	second := collect(t, src, "core")

	var fromCore asset.Asset
	for _, it := range second {
		if it.AssetName() == "broadsword" {
			fromCore = it
		}
	}
	require.Same(t, first[0], fromCore)
}

func TestManifestSource_WithoutDecodeCache(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds(), source.WithoutDecodeCache())
	require.NoError(t, err)

	first := collect(t, src, "melee")
	second := collect(t, src, "melee")
	require.NotSame(t, first[0], second[0])
}

func TestManifestSource_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing kind", "assets:\n  - name: x\n    labels: [core]\n"},
		{"missing name", "assets:\n  - kind: sword\n    labels: [core]\n"},
		{"duplicate name", "assets:\n  - name: x\n    kind: sword\n  - name: x\n    kind: shield\n"},
		{"not yaml", ": : :"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteManifest(t, tt.manifest)
			_, err := source.NewManifestSource(path, testutil.NewKinds())
			require.Error(t, err)
		})
	}
}

func TestManifestSource_MissingFile(t *testing.T) {
	_, err := source.NewManifestSource("/nonexistent/assets.yaml", testutil.NewKinds())
	require.Error(t, err)
}

func TestManifestSource_Labels(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	labels, err := src.Labels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"core", "melee"}, labels)
}

func TestManifestSource_HandleValidity(t *testing.T) {
	path := testutil.WriteManifest(t, testutil.DefaultManifest)
	src, err := source.NewManifestSource(path, testutil.NewKinds())
	require.NoError(t, err)

	var zero source.Handle
	require.True(t, zero.IsZero())
	require.False(t, src.IsValid(zero))
	require.Zero(t, src.PercentComplete(zero))
}
