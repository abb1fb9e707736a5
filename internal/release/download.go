package release

import (
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/registry"
)

// versionToken is substituted in mirror base URLs that embed the version
// in their directory layout.
const versionToken = "{version}"

// checksumExts are the detached checksum files tried next to the
// archive, in preference order.
var checksumExts = []string{".sha512", ".sha1"}

// Download describes a fetched and verified archive.
type Download struct {
	// ArchivePath is the local path of the downloaded tarball. The
	// caller removes it after extraction (best effort).
	ArchivePath string
	// Mirror is the base URL the archive came from.
	Mirror string
	// Archive is the archive file name.
	Archive string
	// ChecksumAlgo is "sha512" or "sha1".
	ChecksumAlgo string
	// Checksum is the verified hex digest.
	Checksum string
}

// DownloaderConfig carries the network knobs for a Downloader.
type DownloaderConfig struct {
	// Mirrors are base URLs tried in order. A {version} token in a
	// mirror is substituted; the archive name is appended after.
	Mirrors []string
	// ConnectTimeout bounds connection establishment per request.
	ConnectTimeout time.Duration
	// DownloadTimeout bounds a whole transfer.
	DownloadTimeout time.Duration
	// Logger receives progress messages; nil means slog.Default.
	Logger *slog.Logger
}

// Downloader fetches release archives from configured mirrors.
type Downloader struct {
	client  *http.Client
	mirrors []string
	log     *slog.Logger
}

// NewDownloader creates a Downloader with split connect/total timeouts.
func NewDownloader(cfg DownloaderConfig) *Downloader {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{
		client: &http.Client{
			Timeout: cfg.DownloadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
				Proxy: http.ProxyFromEnvironment,
			},
		},
		mirrors: cfg.Mirrors,
		log:     log,
	}
}

// ArchiveName returns the release tarball name for a version.
func ArchiveName(v registry.Version) string {
	return registry.Product + "-" + v.String() + ".tar.gz"
}

// archiveURL builds the full archive URL for one mirror.
func archiveURL(mirror string, v registry.Version) string {
	base := strings.ReplaceAll(mirror, versionToken, v.String())
	return strings.TrimRight(base, "/") + "/" + ArchiveName(v)
}

// Fetch downloads the archive for a version from the first mirror that
// serves it and verifies it against its detached checksum. All mirrors
// missing the version is a single uniform ErrDownload; a checksum
// mismatch is terminal and no further mirror is tried.
func (d *Downloader) Fetch(ctx context.Context, v registry.Version, destDir string) (*Download, error) {
	for _, mirror := range d.mirrors {
		url := archiveURL(mirror, v)
		d.log.Debug("trying mirror", "url", url)

		dl, err := d.fetchOne(ctx, mirror, url, v, destDir)
		if err != nil {
			if errors.Is(err, errMirrorMiss) {
				d.log.Debug("mirror does not serve version", "mirror", mirror, "version", v.String())
				continue
			}
			return nil, err
		}
		return dl, nil
	}
	return nil, errors.Wrapf(esvmerrors.ErrDownload,
		"no mirror serves %s %s", registry.Product, v)
}

// errMirrorMiss marks a mirror that does not carry the requested
// version; the next mirror is tried.
var errMirrorMiss = errors.New("mirror miss")

func (d *Downloader) fetchOne(ctx context.Context, mirror, url string, v registry.Version, destDir string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating download request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		// Unreachable mirror: fall through to the next one.
		return nil, errors.WithSecondaryError(errMirrorMiss, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errMirrorMiss
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Wrapf(esvmerrors.ErrDownload,
			"GET %s: status=%d body=%s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	tmp, err := os.CreateTemp(destDir, ".esvm-download-*.tar.gz")
	if err != nil {
		return nil, errors.Wrap(err, "creating download file")
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	d.log.Info("downloading", "url", url)

	// Hash while streaming so verification needs no second read.
	sha512Hash := sha512.New()
	sha1Hash := sha1.New()
	w := io.MultiWriter(tmp, sha512Hash, sha1Hash)
	if _, err := io.Copy(w, resp.Body); err != nil {
		tmp.Close()
		cleanup()
		return nil, errors.Wrapf(esvmerrors.ErrDownload, "transferring %s: %v", url, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return nil, errors.Wrap(err, "closing download file")
	}

	algo, want, err := d.fetchChecksum(ctx, url)
	if err != nil {
		cleanup()
		return nil, err
	}

	var got string
	switch algo {
	case "sha512":
		got = hex.EncodeToString(sha512Hash.Sum(nil))
	default:
		got = hex.EncodeToString(sha1Hash.Sum(nil))
	}
	if got != want {
		cleanup()
		return nil, errors.Wrapf(esvmerrors.ErrChecksumMismatch,
			"%s: %s computed %s, expected %s", ArchiveName(v), algo, got, want)
	}

	d.log.Debug("checksum verified", "algo", algo, "digest", got)

	return &Download{
		ArchivePath:  tmpName,
		Mirror:       mirror,
		Archive:      ArchiveName(v),
		ChecksumAlgo: algo,
		Checksum:     want,
	}, nil
}

// fetchChecksum retrieves the detached checksum published next to the
// archive. Integrity is not optional: no checksum on any candidate is a
// hard download failure.
func (d *Downloader) fetchChecksum(ctx context.Context, archiveURL string) (algo, digest string, err error) {
	for _, ext := range checksumExts {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL+ext, nil)
		if err != nil {
			return "", "", errors.Wrap(err, "creating checksum request")
		}
		resp, err := d.client.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if err != nil {
			continue
		}
		digest, err := parseChecksum(string(body))
		if err != nil {
			return "", "", errors.Wrapf(err, "parsing %s", archiveURL+ext)
		}
		return strings.TrimPrefix(ext, "."), digest, nil
	}
	return "", "", errors.Wrapf(esvmerrors.ErrDownload,
		"no checksum published for %s", archiveURL)
}

// parseChecksum accepts both "<hex>" and "<hex>  <filename>" forms.
func parseChecksum(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", errors.New("empty checksum file")
	}
	digest := strings.ToLower(fields[0])
	if _, err := hex.DecodeString(digest); err != nil {
		return "", errors.Wrapf(err, "checksum %q is not hex", fields[0])
	}
	return digest, nil
}

// hashFor returns the hash implementation for a checksum algo name.
// Kept for callers that verify an existing archive on disk.
func hashFor(algo string) hash.Hash {
	if algo == "sha512" {
		return sha512.New()
	}
	return sha1.New()
}

// VerifyFile recomputes a file's digest and compares it to want.
func VerifyFile(path, algo, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer f.Close()

	h := hashFor(algo)
	if _, err := io.Copy(h, f); err != nil {
		return errors.Wrap(err, "hashing archive")
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return errors.Wrapf(esvmerrors.ErrChecksumMismatch,
			"%s: %s computed %s, expected %s", path, algo, got, want)
	}
	return nil
}
