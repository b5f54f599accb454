package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Loader reads devices from a text resource.
type Loader interface {
	// Load returns the decodable devices in file order. A missing resource
	// yields no devices and no error.
	Load(ctx context.Context, path string) ([]Device, error)
}

// Saver writes devices to a text resource, replacing its contents.
type Saver interface {
	Save(ctx context.Context, path string, devices []Device) error
}

// FileStore implements Loader and Saver on local files, one encoded device
// per line.
type FileStore struct {
	logger    Logger
	separator string
}

// NewFileStore creates a FileStore using the platform line separator.
func NewFileStore() *FileStore {
	return &FileStore{logger: noopLogger{}, separator: lineSeparator(runtime.GOOS)}
}

// SetLogger sets the logger used to report skipped lines.
func (s *FileStore) SetLogger(logger Logger) {
	s.logger = logger
}

// Load reads path and decodes every non-blank line. Lines that fail to
// decode are logged and skipped.
func (s *FileStore) Load(ctx context.Context, path string) ([]Device, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("device file not found, starting empty", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("opening device file: %w", err)
	}
	defer f.Close()

	var (
		devices []Device
		lineNo  int
		skipped int
	)
	reader := bufio.NewReader(f)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("reading device file: %w", readErr)
		}
		if line != "" {
			lineNo++
			d, err := decodeLine(line)
			switch {
			case errors.Is(err, errBlankLine):
			case err != nil:
				skipped++
				s.logger.Warn("skipping device line", "path", path, "line", lineNo, "error", err)
			default:
				devices = append(devices, d)
			}
		}
		if readErr != nil {
			break
		}
	}

	s.logger.Debug("device file loaded", "path", path, "devices", len(devices), "skipped", skipped)
	return devices, nil
}

// Save encodes every device and replaces path with the result. Nothing is
// written if any device fails to encode.
func (s *FileStore) Save(ctx context.Context, path string, devices []Device) error {
	var b strings.Builder
	for _, d := range devices {
		line, err := Encode(d)
		if err != nil {
			return err
		}
		b.WriteString(line)
		b.WriteString(s.separator)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating device file directory: %w", err)
	}

	// Write to a sibling temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp device file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing device file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing device file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing device file: %w", err)
	}

	s.logger.Debug("device file saved", "path", path, "devices", len(devices))
	return nil
}

// maxLineLength is the longest line Load will try to decode. Longer lines
// are skipped like any other malformed line.
const maxLineLength = 64 << 10

var errBlankLine = errors.New("blank line")

func decodeLine(line string) (Device, error) {
	if strings.TrimSpace(line) == "" {
		return nil, errBlankLine
	}
	if len(line) > maxLineLength {
		return nil, fmt.Errorf("%w: line of %d bytes exceeds %d", ErrDecode, len(line), maxLineLength)
	}
	return Decode(line)
}

// lineSeparator returns the line terminator written on goos.
func lineSeparator(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}
