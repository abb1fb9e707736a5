package registry

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// ReceiptName is the per-version install receipt written into each
// version directory after a successful download.
const ReceiptName = ".esvm-receipt.toml"

// Receipt records how a version was installed. Its absence is not an
// error; directories dropped in by hand still count as installed.
type Receipt struct {
	Version      string    `toml:"version"`
	InstalledAt  time.Time `toml:"installed_at"`
	Mirror       string    `toml:"mirror"`
	Archive      string    `toml:"archive"`
	ChecksumAlgo string    `toml:"checksum_algo"`
	Checksum     string    `toml:"checksum"`
}

// WriteReceipt stores the receipt inside the version directory.
func WriteReceipt(versionDir string, rec Receipt) error {
	data, err := toml.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshaling receipt")
	}
	path := filepath.Join(versionDir, ReceiptName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing receipt")
	}
	return nil
}

// ReadReceipt loads the receipt from a version directory.
// Returns (nil, nil) when no receipt exists.
func ReadReceipt(versionDir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(versionDir, ReceiptName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading receipt")
	}
	var rec Receipt
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "parsing receipt")
	}
	return &rec, nil
}
