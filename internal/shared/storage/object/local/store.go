package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/keshav-protos/medai-clinical-view/internal/shared/storage/object"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/util"
)

// Store implements ObjectStore using the local filesystem. Signed URLs are
// HMAC tokens served back through the API's /files route.
type Store struct {
	baseDir string
	baseURL string
	secret  []byte
	now     func() time.Time
}

// New creates a local object store rooted at baseDir. baseURL is the public
// address of this API, used to build signed read URLs.
func New(baseDir, baseURL, secret string) *Store {
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}
}

// Save writes the reader to disk under {hashedUserId}/{timestamp}.{ext}.
func (s *Store) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	if _, err := util.SanitizeFileName(fileName); err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	userKey := util.HashUserKey(userId)
	finalName := fmt.Sprintf("%d.%s", s.now().UTC().UnixMilli(), util.FileExt(fileName))

	dirPath := filepath.Join(s.baseDir, userKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dirPath, finalName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", 0, "", fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType := http.DetectContentType(sniff[:n])

	size := int64(0)
	if n > 0 {
		if _, err := f.Write(sniff[:n]); err != nil {
			return "", 0, "", fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		return "", 0, "", fmt.Errorf("write body: %w", err)
	}
	size += written

	return path.Join(userKey, finalName), size, mimeType, nil
}

// SignedURL builds an expiring HMAC-signed URL for the stored object.
func (s *Store) SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	exp := s.now().UTC().Add(ttl).Unix()
	sig := s.signature(storageKey, exp)

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/api/v1/files/%s?%s", s.baseURL, storageKey, q.Encode()), nil
}

// Verify checks an exp/sig pair minted by SignedURL for the given key.
func (s *Store) Verify(storageKey string, exp int64, sig string) bool {
	if exp < s.now().UTC().Unix() {
		return false
	}
	expected := s.signature(storageKey, exp)
	return hmac.Equal([]byte(sig), []byte(expected))
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage key")
	}

	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) signature(storageKey string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", storageKey, exp)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

var _ object.ObjectStore = (*Store)(nil)
