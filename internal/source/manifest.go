package source

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/cachemanager"
	"github.com/softglow/assetdb/internal/log"
)

// manifestFile is the root structure of an assets.yaml document.
type manifestFile struct {
	Assets []assetDoc `yaml:"assets"`
}

// assetDoc is one asset declaration. Spec stays an undecoded node until a
// fetch touches it; the kind registry decides the concrete type.
type assetDoc struct {
	Name   string    `yaml:"name"`
	Kind   string    `yaml:"kind"`
	Labels []string  `yaml:"labels"`
	Spec   yaml.Node `yaml:"spec"`
}

// ManifestOption configures a ManifestSource.
type ManifestOption func(*manifestOpts)

type manifestOpts struct {
	cacheTTL  time.Duration
	skipCache bool
}

// WithDecodeCacheTTL sets how long decoded assets stay shared between
// fetches. Default is cachemanager.DefaultExpiration.
func WithDecodeCacheTTL(ttl time.Duration) ManifestOption {
	return func(o *manifestOpts) { o.cacheTTL = ttl }
}

// WithoutDecodeCache decodes every asset on every fetch.
func WithoutDecodeCache() ManifestOption {
	return func(o *manifestOpts) { o.skipCache = true }
}

// ManifestSource serves assets declared in a YAML manifest file. The
// manifest is parsed once at construction; asset specs are decoded lazily
// per fetch through a read-through cache, so registries for overlapping
// labels share decode work.
type ManifestSource struct {
	path  string
	kinds *KindRegistry
	docs  []assetDoc
	cache *cachemanager.ReadThroughCache[string, asset.Asset, *assetDoc]
	ttl   time.Duration

	*tracker
}

var _ Source = (*ManifestSource)(nil)
var _ LabelLister = (*ManifestSource)(nil)

// NewManifestSource parses the manifest at path and validates its
// declarations. Asset specs are not decoded yet; an unknown kind only
// surfaces when a fetch reaches it.
func NewManifestSource(path string, kinds *KindRegistry, opts ...ManifestOption) (*ManifestSource, error) {
	o := manifestOpts{cacheTTL: cachemanager.DefaultExpiration}
	for _, fn := range opts {
		fn(&o)
	}

	raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var file manifestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(file.Assets))
	for i := range file.Assets {
		doc := &file.Assets[i]
		if doc.Name == "" || doc.Kind == "" {
			return nil, fmt.Errorf("manifest %s: asset %d missing name or kind", path, i)
		}
		if _, dup := seen[doc.Name]; dup {
			return nil, fmt.Errorf("manifest %s: duplicate asset name %q", path, doc.Name)
		}
		seen[doc.Name] = struct{}{}
	}

	s := &ManifestSource{
		path:    path,
		kinds:   kinds,
		docs:    file.Assets,
		ttl:     o.cacheTTL,
		tracker: newTracker(),
	}

	backing := cachemanager.NewInMemoryCacheManager[string, asset.Asset](
		"manifest-decode", o.cacheTTL, cachemanager.DefaultCleanupInterval)
	s.cache = cachemanager.NewReadThroughCache(backing, s.decode, o.skipCache)

	log.Info(log.CatManifest, "manifest loaded", "path", path, "assets", len(file.Assets))
	return s, nil
}

func (s *ManifestSource) decode(ctx context.Context, doc *assetDoc) (asset.Asset, error) {
	return s.kinds.Decode(doc.Kind, func(out any) error {
		return doc.Spec.Decode(out)
	})
}

// FetchByLabel delivers every manifest asset tagged with label on a
// background goroutine. Assets whose spec fails to decode are dropped
// with a logged error; an unknown label completes with zero items.
func (s *ManifestSource) FetchByLabel(ctx context.Context, label string, onItem func(asset.Asset), onDone func()) (Handle, error) {
	var matched []*assetDoc
	for i := range s.docs {
		if slices.Contains(s.docs[i].Labels, label) {
			matched = append(matched, &s.docs[i])
		}
	}

	h, f := s.begin(len(matched))
	log.Debug(log.CatSource, "manifest fetch started", "label", label, "handle", h, "matched", len(matched))

	go func() {
		for _, doc := range matched {
			a, err := s.cache.Get(ctx, s.path+"#"+doc.Name, doc, s.ttl)
			if err != nil {
				s.drop()
				log.ErrorErr(log.CatSource, "asset dropped: decode failed", err,
					"label", label, "name", doc.Name, "kind", doc.Kind)
			} else if onItem != nil {
				onItem(a)
			}
			f.delivered.Add(1)
		}
		// onDone before the completion mark, matching the Source
		// contract: WaitForCompletion implies onDone has finished.
		if onDone != nil {
			onDone()
		}
		close(f.done)
	}()

	return h, nil
}

// WaitForCompletion blocks until the fetch behind h has finished.
func (s *ManifestSource) WaitForCompletion(h Handle) { s.wait(h) }

// PercentComplete reports fetch progress in [0, 1].
func (s *ManifestSource) PercentComplete(h Handle) float64 { return s.percent(h) }

// IsValid reports whether h came from this source.
func (s *ManifestSource) IsValid(h Handle) bool { return s.valid(h) }

// Drops counts assets dropped by decode failures across all fetches.
func (s *ManifestSource) Drops() int64 { return s.dropped() }

// Labels returns every label the manifest mentions, sorted.
func (s *ManifestSource) Labels(ctx context.Context) ([]string, error) {
	set := make(map[string]struct{})
	for i := range s.docs {
		for _, l := range s.docs[i].Labels {
			set[l] = struct{}{}
		}
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, nil
}
