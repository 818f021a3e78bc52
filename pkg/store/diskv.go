package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/record"
)

// Persistence is the local mirror of the host data store. Records are kept
// as raw JSON payloads keyed by kind and record Id, in backend order.
type Persistence interface {
	List(ctx context.Context, kind record.Kind, scopeID string) ([]json.RawMessage, error)
	Count(ctx context.Context, kind record.Kind) int
	Put(kind record.Kind, raw json.RawMessage) error
	Replace(ctx context.Context, kind record.Kind, raws []json.RawMessage) error
	Reset() error
	Watch(ctx context.Context) (<-chan Event, error)
}

// scopeFields names the payload field a scoped query matches against.
var scopeFields = map[record.Kind]string{
	record.KindOrderItems: "OrderId",
}

const indexSuffix = ".index.json"

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      4 * 1024 * 1024, // 4MB
		}),
		basePath: basePath,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	log      *zap.Logger

	// indexMu guards the per-kind order index files.
	indexMu sync.Mutex
}

func (p *persistence) List(ctx context.Context, kind record.Kind, scopeID string) ([]json.RawMessage, error) {
	p.indexMu.Lock()
	ids, err := p.loadIndex(kind)
	p.indexMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("store: load %s index: %w", kind, err)
	}

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		val, err := p.d.Read(toKey(kind, id))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("store: read %s/%s: %w", kind, id, err)
		}
		if scopeID != "" && scopeOf(kind, val) != scopeID {
			continue
		}
		out = append(out, json.RawMessage(val))
	}
	return out, nil
}

func (p *persistence) Count(ctx context.Context, kind record.Kind) int {
	n := 0
	for range p.d.KeysPrefix(string(kind)+"/", ctx.Done()) {
		n++
	}
	return n
}

func (p *persistence) Put(kind record.Kind, raw json.RawMessage) error {
	id, err := recordID(raw)
	if err != nil {
		return err
	}
	p.indexMu.Lock()
	defer p.indexMu.Unlock()
	ids, err := p.loadIndex(kind)
	if err != nil {
		return fmt.Errorf("store: load %s index: %w", kind, err)
	}
	if err := p.d.Write(toKey(kind, id), raw); err != nil {
		return fmt.Errorf("store: write %s/%s: %w", kind, id, err)
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return p.saveIndex(kind, append(ids, id))
}

func (p *persistence) Replace(ctx context.Context, kind record.Kind, raws []json.RawMessage) error {
	ids := make([]string, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		id, err := recordID(raw)
		if err != nil {
			return fmt.Errorf("store: %s record %d: %w", kind, i, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	p.indexMu.Lock()
	defer p.indexMu.Unlock()

	var stale []string
	for key := range p.d.KeysPrefix(string(kind)+"/", ctx.Done()) {
		stale = append(stale, key)
	}
	for _, key := range stale {
		if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store: erase %s: %w", key, err)
		}
	}
	for i, raw := range raws {
		id, _ := recordID(raw)
		if err := p.d.Write(toKey(kind, id), raw); err != nil {
			return fmt.Errorf("store: write %s record %d: %w", kind, i, err)
		}
	}
	return p.saveIndex(kind, ids)
}

func (p *persistence) Reset() error {
	p.indexMu.Lock()
	defer p.indexMu.Unlock()
	if err := p.d.EraseAll(); err != nil {
		return fmt.Errorf("store: erase all: %w", err)
	}
	return os.MkdirAll(p.basePath, 0o755)
}

func (p *persistence) indexPath(kind record.Kind) string {
	return filepath.Join(p.basePath, string(kind)+indexSuffix)
}

func (p *persistence) loadIndex(kind record.Kind) ([]string, error) {
	data, err := os.ReadFile(p.indexPath(kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (p *persistence) saveIndex(kind record.Kind, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	path := p.indexPath(kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func recordID(raw json.RawMessage) (string, error) {
	var head struct {
		ID string `json:"Id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("store: decode record id: %w", err)
	}
	if strings.TrimSpace(head.ID) == "" {
		return "", errors.New("store: record Id required")
	}
	return head.ID, nil
}

func scopeOf(kind record.Kind, raw []byte) string {
	field, ok := scopeFields[kind]
	if !ok {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	var v string
	if err := json.Unmarshal(fields[field], &v); err != nil {
		return ""
	}
	return v
}

func keyToPathTransform(s string) *diskv.PathKey {
	kind, file, _ := strings.Cut(s, "/")
	return &diskv.PathKey{
		Path:     []string{kind},
		FileName: file,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

// toKey makes `kind/hex(id)`.
func toKey(kind record.Kind, id string) string {
	return fmt.Sprintf("%s/%s", kind, hex.EncodeToString([]byte(id)))
}
