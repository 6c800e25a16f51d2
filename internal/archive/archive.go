// Package archive reads chat messages from an exported archive. An archive is
// either a .zip file or an unpacked directory holding messages/<channel>/messages.csv.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
	"github.com/spf13/afero"
)

// ErrNoMessages is returned when an archive has no channel message files at all.
var ErrNoMessages = errors.New("archive has no messages/<channel>/messages.csv files")

const (
	messagesDir     = "messages"
	messagesFile    = "messages.csv"
	channelFilePath = messagesDir + "/*/" + messagesFile
)

// channelFile is one messages.csv inside the archive.
type channelFile struct {
	channel string
	open    func() (io.ReadCloser, error)
}

// Source is a contract.MessageSource backed by a zip file or a directory.
type Source struct {
	fs    afero.Fs
	path  string
	isZip bool
}

var _ contract.MessageSource = &Source{} // Compile-time check

// NewSource opens the archive at path on the local filesystem.
func NewSource(path string) (*Source, error) {
	return NewSourceFs(afero.NewOsFs(), path)
}

// NewSourceFs opens the archive at path on fs.
func NewSourceFs(fs afero.Fs, path string) (*Source, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	isZip := !info.IsDir()
	if isZip && !strings.EqualFold(filepath.Ext(path), ".zip") {
		return nil, fmt.Errorf("archive %s must be a .zip file or a directory", path)
	}
	return &Source{fs: fs, path: path, isZip: isZip}, nil
}

// Name implements contract.MessageSource.
func (s *Source) Name() string {
	return s.path
}

// Digest implements contract.MessageSource. For zip files it hashes the file
// bytes; for directories it hashes every channel file path and its content.
func (s *Source) Digest() (string, error) {
	h := sha256.New()
	if s.isZip {
		data, err := afero.ReadFile(s.fs, s.path)
		if err != nil {
			return "", fmt.Errorf("failed to read archive: %w", err)
		}
		h.Write(data)
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	files, err := s.channelFiles()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		fmt.Fprintf(h, "%s\x00", f.channel)
		rc, err := f.open()
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to hash channel %s: %w", f.channel, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadMessages implements contract.MessageSource. Channels are read in name order.
func (s *Source) ReadMessages(ctx context.Context) ([]schema.RawMessage, error) {
	files, err := s.channelFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoMessages
	}

	messages := []schema.RawMessage{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc, err := f.open()
		if err != nil {
			return nil, fmt.Errorf("failed to open channel %s: %w", f.channel, err)
		}
		channelMessages, stats, err := ParseChannel(rc, f.channel)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse channel %s: %w", f.channel, err)
		}
		if stats.BadTimestamps > 0 {
			contract.Logger().WithField("channel", f.channel).
				Warnf("skipped %d messages with unparsable timestamps", stats.BadTimestamps)
		}
		messages = append(messages, channelMessages...)
	}
	contract.Logger().Debugf("read %d messages from %d channels", len(messages), len(files))
	return messages, nil
}

// channelFiles lists every messages/<channel>/messages.csv sorted by channel.
func (s *Source) channelFiles() ([]channelFile, error) {
	var files []channelFile
	var err error
	if s.isZip {
		files, err = s.zipChannelFiles()
	} else {
		files, err = s.dirChannelFiles()
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].channel < files[j].channel })
	return files, nil
}

func (s *Source) zipChannelFiles() ([]channelFile, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	var files []channelFile
	for _, zf := range r.File {
		name := strings.TrimPrefix(zf.Name, "/")
		if ok, _ := path.Match(channelFilePath, name); !ok {
			continue
		}
		files = append(files, channelFile{
			channel: path.Base(path.Dir(name)),
			open:    zf.Open,
		})
	}
	return files, nil
}

func (s *Source) dirChannelFiles() ([]channelFile, error) {
	matches, err := afero.Glob(s.fs, filepath.Join(s.path, messagesDir, "*", messagesFile))
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	files := make([]channelFile, 0, len(matches))
	for _, match := range matches {
		name := match
		files = append(files, channelFile{
			channel: filepath.Base(filepath.Dir(name)),
			open: func() (io.ReadCloser, error) {
				return s.fs.Open(name)
			},
		})
	}
	return files, nil
}
