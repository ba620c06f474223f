package descriptor

import (
	"context"
	"fmt"
	"os"
	"strings"

	s3pkg "github.com/Alijeyrad/wscontext/pkg/s3"
)

// ObjectGetter reads whole objects by key. *s3.Client satisfies it.
type ObjectGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// DocumentLoader reads description documents from files or an object store.
type DocumentLoader struct {
	objects ObjectGetter
}

// NewDocumentLoader returns a loader. objects may be nil when no "s3://"
// locations are configured.
func NewDocumentLoader(objects ObjectGetter) *DocumentLoader {
	return &DocumentLoader{objects: objects}
}

// Load reads the document at location. An empty location yields no document.
func (l *DocumentLoader) Load(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, nil
	}

	if key, ok := strings.CutPrefix(location, s3pkg.Scheme); ok {
		if l == nil || l.objects == nil {
			return nil, fmt.Errorf("load document %q: %w", location, ErrNoDocStore)
		}
		doc, err := l.objects.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load document %q: %w", location, err)
		}
		return doc, nil
	}

	doc, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", location, err)
	}
	return doc, nil
}
