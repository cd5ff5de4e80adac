package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const csvSuffix = ".csv"

var (
	ErrNoFile  = errors.New("no file provided")
	ErrNotCSV  = errors.New("only csv files are allowed")
	ErrStorage = errors.New("storage failure")
)

type Service struct {
	backend Backend
	now     func() time.Time
}

func NewService(backend Backend) *Service {
	return &Service{
		backend: backend,
		now:     time.Now,
	}
}

// IsCSV reports whether name carries the literal, case-sensitive .csv suffix.
func IsCSV(name string) bool {
	return strings.HasSuffix(name, csvSuffix)
}

// DerivedName is the on-disk name for an upload received at t. Two uploads of
// the same name within one millisecond share a derived name.
func DerivedName(original string, t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + original
}

func (s *Service) Upload(ctx context.Context, req *UploadRequest, data io.Reader) (*UploadResponse, error) {
	if req == nil || req.Filename == "" || data == nil {
		return nil, ErrNoFile
	}
	if !IsCSV(req.Filename) {
		return nil, ErrNotCSV
	}

	buf := &bytes.Buffer{}
	if req.Size > 0 {
		buf.Grow(int(req.Size))
	}
	n, err := io.Copy(buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	savedAs := DerivedName(req.Filename, s.now())
	if err := s.backend.Store(ctx, savedAs, bytes.NewReader(buf.Bytes())); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStorage, savedAs, err)
	}

	log.Info().
		Str("fileName", req.Filename).
		Str("savedAs", savedAs).
		Int64("size", n).
		Msg("Upload stored")

	return &UploadResponse{
		Success:  true,
		FileName: req.Filename,
		SavedAs:  savedAs,
		Size:     n,
	}, nil
}
