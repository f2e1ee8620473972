// Package texts reads normalized judgment texts from the corpus directory.
package texts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
)

const ext = ".txt"

// Provider serves <dir>/<identity>.txt.
type Provider struct {
	dir string
}

// New returns a provider rooted at dir. The directory need not exist yet.
func New(dir string) *Provider {
	return &Provider{dir: dir}
}

// Dir returns the corpus directory.
func (p *Provider) Dir() string { return p.dir }

// Path returns the file backing identity.
func (p *Provider) Path(identity string) string {
	return filepath.Join(p.dir, identity+ext)
}

// FullText returns the document text. Missing files yield domain.ErrNotFound.
func (p *Provider) FullText(ctx context.Context, identity string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("read text %s: %w", identity, err)
	}
	if err := docindex.ValidateIdentity(identity); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.Path(identity))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("text for %s: %w", identity, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read text %s: %w", identity, err)
	}
	return string(data), nil
}

// List returns all identities in the corpus, in natural order.
func (p *Provider) List() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		ids = append(ids, domain.IdentityFromSource(e.Name()))
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// Check reports whether the corpus directory is readable.
func (p *Provider) Check(_ context.Context) error {
	info, err := os.Stat(p.dir)
	if err != nil {
		return fmt.Errorf("corpus dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus dir %s is not a directory", p.dir)
	}
	return nil
}
