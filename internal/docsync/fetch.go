package docsync

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// fetchAndUnpack retrieves the bundle archive from one mirror and unpacks it
// over the doc directory. Every failure is reported and swallowed; the caller
// re-derives the bundle state from disk afterwards.
func (e *Engine) fetchAndUnpack(mirror string) {
	name := fmt.Sprintf("%s-%s.tar.gz", e.BundlePrefix, e.Version)
	url := strings.TrimRight(mirror, "/") + "/" + name
	archive := filepath.Join(e.Root, name)

	fmt.Fprintf(e.Out, "Downloading %s ...\n", url)
	if err := e.download(url, archive); err != nil {
		// Leave no partial download behind.
		_ = e.Fs.Remove(archive)
		fmt.Fprintf(e.Out, "WARNING: download from %s failed: %v\n", mirror, err)
		return
	}

	// Replace, not merge: stale files from an older bundle must not survive.
	if err := e.Fs.RemoveAll(filepath.Join(e.Root, DocDir)); err != nil {
		fmt.Fprintf(e.Out, "WARNING: removing old documentation: %v\n", err)
	}

	err := e.unpack(archive)
	// The archive is scratch space either way.
	_ = e.Fs.Remove(archive)
	if err != nil {
		fmt.Fprintf(e.Out, "WARNING: unpacking %s failed: %v\n", name, err)
		return
	}

	marker := filepath.Join(e.Root, DocDir, InstalledVersionFile)
	if err := afero.WriteFile(e.Fs, marker, []byte(e.Version+"\n"), 0o644); err != nil {
		fmt.Fprintf(e.Out, "WARNING: recording documentation version: %v\n", err)
	}
}

// download retrieves url into dest on the engine filesystem.
func (e *Engine) download(url, dest string) error {
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "prep-docsync")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	f, err := e.Fs.Create(dest)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("writing download: %w", err)
	}
	return nil
}

// unpack extracts the tar.gz archive into the tree root. The bundle layout
// puts everything under doc/; entries outside it or containing traversal are
// skipped.
func (e *Engine) unpack(archive string) error {
	f, err := e.Fs.Open(archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		clean := path.Clean(hdr.Name)
		if clean != DocDir && !strings.HasPrefix(clean, DocDir+"/") {
			continue
		}
		dest := filepath.Join(e.Root, filepath.FromSlash(clean))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := e.Fs.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", clean, err)
			}
		case tar.TypeReg:
			if err := e.Fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", clean, err)
			}
			out, err := e.Fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return fmt.Errorf("creating file %s: %w", clean, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extracting %s: %w", clean, err)
			}
			out.Close()
		}
	}
	return nil
}
