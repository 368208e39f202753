package mediastore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/screenwerk/signage/internal/domain"
)

const defaultUploadTTL = 15 * time.Minute

var (
	ErrURLExpired       = errors.New("signed URL expired")
	ErrInvalidSignature = errors.New("invalid URL signature")
	ErrUnsupportedMedia = errors.New("unsupported media file type")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".webm": true,
}

type Store struct {
	baseURL   string
	key       []byte
	clock     clockwork.Clock
	uploadTTL time.Duration
}

func New(baseURL, signingKey string, clock clockwork.Clock) *Store {
	return &Store{
		baseURL:   strings.TrimRight(baseURL, "/"),
		key:       []byte(signingKey),
		clock:     clock,
		uploadTTL: defaultUploadTTL,
	}
}

// IssueUpload creates a fresh object key under the ad's prefix and signs a
// PUT URL for it. The extension is taken from fileName and must be a known
// image or video type.
func (s *Store) IssueUpload(adID, fileName string) (*domain.UploadTicket, error) {
	ext := strings.ToLower(path.Ext(fileName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}

	key := path.Join("media", adID, uuid.NewString()+ext)
	expiresAt := s.clock.Now().Add(s.uploadTTL)

	return &domain.UploadTicket{
		Key:       key,
		UploadURL: s.signedURL("PUT", key, expiresAt),
		MediaURL:  s.URL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// URL returns the public download URL for an object key.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *Store) signedURL(method, key string, expiresAt time.Time) string {
	expires := strconv.FormatInt(expiresAt.Unix(), 10)
	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", s.sign(method, key, expires))
	return s.URL(key) + "?" + q.Encode()
}

// Verify checks a signed URL's signature and expiry. The media host calls
// this with the method, object key and query parameters of an incoming
// request.
func (s *Store) Verify(method, key, expires, signature string) error {
	want := s.sign(method, key, expires)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return ErrInvalidSignature
	}

	deadline, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if s.clock.Now().After(time.Unix(deadline, 0)) {
		return ErrURLExpired
	}
	return nil
}

func (s *Store) sign(method, key, expires string) string {
	mac := hmac.New(sha256.New, s.key)
	fmt.Fprintf(mac, "%s\n%s\n%s", method, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
