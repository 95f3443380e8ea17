package source_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/testutil"
)

func TestSQLiteSource_FetchByLabel(t *testing.T) {
	src := testutil.NewSeededSQLiteSource(t)

	items := collect(t, src, "core")
	require.Len(t, items, 3)

	items = collect(t, src, "melee")
	require.Len(t, items, 1)
	require.Equal(t, "broadsword", items[0].AssetName())
}

func TestSQLiteSource_UnknownLabelIsEmptyNotError(t *testing.T) {
	src := testutil.NewSeededSQLiteSource(t)

	done := false
	h, err := src.FetchByLabel(context.Background(), "no-such-label", nil, func() { done = true })
	require.NoError(t, err)
	src.WaitForCompletion(h)
	require.True(t, done)
}

func TestSQLiteSource_PutReplacesLabels(t *testing.T) {
	src := testutil.NewSeededSQLiteSource(t)
	ctx := context.Background()

	// Re-putting the broadsword without the melee label removes it
	// from that label's fetch set.
	require.NoError(t, src.Put(ctx, "broadsword", "sword",
		"name: broadsword\ndamage: 14\nweight: 6\n", "core"))

	require.Empty(t, collect(t, src, "melee"))

	items := collect(t, src, "core")
	require.Len(t, items, 3)
	for _, it := range items {
		if sword, ok := it.(*testutil.Sword); ok && sword.Name == "broadsword" {
			require.Equal(t, 14, sword.Dmg)
		}
	}
}

func TestSQLiteSource_BadRowDropped(t *testing.T) {
	src := testutil.NewSeededSQLiteSource(t)
	ctx := context.Background()

	require.NoError(t, src.Put(ctx, "mystery", "artifact", "whatever: 1\n", "core"))

	items := collect(t, src, "core")
	require.Len(t, items, 3) // the artifact row decodes to nothing
}

func TestSQLiteSource_Labels(t *testing.T) {
	src := testutil.NewSeededSQLiteSource(t)

	labels, err := src.Labels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"core", "melee"}, labels)
}

func TestSQLiteSource_DecodedTypes(t *testing.T) {
	src := testutil.NewSeededSQLiteSource(t)

	items := collect(t, src, "core")
	swords, shields := 0, 0
	for _, it := range items {
		switch it.(type) {
		case *testutil.Sword:
			swords++
		case *testutil.Shield:
			shields++
		}
	}
	require.Equal(t, 2, swords)
	require.Equal(t, 1, shields)
}

var _ source.LabelLister = (*source.SQLiteSource)(nil)
