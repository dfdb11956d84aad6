package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// mimeKinds is the allow-list of media types users may attach to an
// application, with the kind each one classifies as.
var mimeKinds = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"image/gif":  "image",
	"image/webp": "image",
	"video/mp4":  "video",
	"video/avi":  "video",
	"video/mov":  "video",
	"video/wmv":  "video",
	"video/flv":  "video",
	"video/webm": "video",
}

type StoredFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

type Service struct {
	store        ObjectStore
	node         *snowflake.Node
	publicPrefix string
}

func NewService(store ObjectStore, node *snowflake.Node, publicPrefix string) *Service {
	return &Service{
		store:        store,
		node:         node,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}
}

// Store validates the declared media type against the allow-list, writes the
// object under a generated name that keeps the original extension, and
// returns the public descriptor. The declared type is trusted as-is, matching
// the legacy behavior; content sniffing is a known gap.
func (s *Service) Store(ctx context.Context, filename, declaredMIME string, size int64, r io.Reader) (*StoredFile, error) {
	kind, ok := mimeKinds[declaredMIME]
	if !ok {
		return nil, errutil.UnsupportedMediaType("Неподдерживаемый тип файла")
	}

	name := s.node.Generate().String() + strings.ToLower(filepath.Ext(filename))
	if err := s.store.Put(ctx, name, r, size, declaredMIME); err != nil {
		return nil, err
	}

	zap.L().Info("file stored",
		zap.String("filename", name),
		zap.String("type", kind),
		zap.Int64("size", size),
	)

	return &StoredFile{
		Filename: name,
		URL:      s.publicPrefix + "/" + name,
		Type:     kind,
		Size:     size,
	}, nil
}

// Open fetches a stored object for read-only serving.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error) {
	return s.store.Open(ctx, name)
}
