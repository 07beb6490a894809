package adapters

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"mlflow-algorithmia/internal/ports"
)

const bundleExt = ".tar.gz"

// TarGzBundleAdapter writes a model directory into <dest>/<name>.tar.gz
// with every entry placed under the "<name>/" prefix.
type TarGzBundleAdapter struct {
	Fs afero.Fs
}

func NewTarGzBundleAdapter(fs afero.Fs) TarGzBundleAdapter {
	return TarGzBundleAdapter{Fs: fs}
}

func (a TarGzBundleAdapter) CreateBundle(ctx context.Context, modelDir string, destDir string, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle name is empty")
	}
	info, err := a.Fs.Stat(modelDir)
	if err != nil || !info.IsDir() {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("model directory not found: " + modelDir).
			WithCause(err)
	}
	if err := a.Fs.MkdirAll(destDir, 0o750); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create bundle directory").
			WithCause(err)
	}
	bundlePath := filepath.Join(destDir, name+bundleExt)
	out, err := a.Fs.OpenFile(bundlePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create bundle file").
			WithCause(err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	if err := a.writeTree(ctx, tw, modelDir, name, bundlePath); err != nil {
		return "", err
	}
	if err := tw.Close(); err != nil {
		return "", bundleWriteError(err)
	}
	if err := gz.Close(); err != nil {
		return "", bundleWriteError(err)
	}
	log.Ctx(ctx).Debug().Str("bundle", bundlePath).Msg("model bundle written")
	return bundlePath, nil
}

func (a TarGzBundleAdapter) writeTree(ctx context.Context, tw *tar.Writer, root string, prefix string, skip string) error {
	absSkip, _ := filepath.Abs(skip)
	return afero.Walk(a.Fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return bundleWriteError(walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if abs, _ := filepath.Abs(path); abs == absSkip {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return bundleWriteError(err)
		}
		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			reader, ok := a.Fs.(afero.LinkReader)
			if !ok {
				return nil
			}
			if link, err = reader.ReadlinkIfPossible(path); err != nil {
				return bundleWriteError(err)
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return bundleWriteError(err)
		}
		hdr.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return bundleWriteError(err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		file, err := a.Fs.Open(path)
		if err != nil {
			return bundleWriteError(err)
		}
		defer file.Close()
		if _, err := io.Copy(tw, file); err != nil {
			return bundleWriteError(err)
		}
		return nil
	})
}

func bundleWriteError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to write model bundle").
		WithCause(err)
}

var _ ports.BundlePort = TarGzBundleAdapter{}
