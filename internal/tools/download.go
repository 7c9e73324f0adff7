package tools

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
)

// ErrChecksumMismatch is returned when a download does not match its published SHA-256
var ErrChecksumMismatch = errors.New("checksum mismatch")

// errNoChecksum means the artifact has no published checksum
var errNoChecksum = errors.New("no checksum published")

// downloadFile writes url to dst and returns the hex SHA-256 of the body
func downloadFile(ctx context.Context, client *http.Client, url, dst string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: unexpected status %d", url, resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, hash), resp.Body); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// fetchChecksum returns the first field of a checksum file.
// A 404 is reported as errNoChecksum.
func fetchChecksum(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch checksum %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errNoChecksum
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch checksum %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read checksum %s: %w", url, err)
	}

	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file %s", url)
	}

	return strings.ToLower(fields[0]), nil
}

// verifyChecksum compares got against want
func verifyChecksum(name, got, want string) error {
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%s: %w: expected %s, got %s", name, ErrChecksumMismatch, want, got)
	}
	return nil
}

// extractFromTarGz copies the regular file member out of the archive at src into dst
func extractFromTarGz(src, member, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("%s not found in archive", member)
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		if hdr.Typeflag != tar.TypeReg || path.Clean(hdr.Name) != member {
			continue
		}

		out, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dst, err)
		}

		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("failed to extract %s: %w", member, err)
		}

		return out.Close()
	}
}
