package blocksync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/libsv/go-p2p/wire"
)

var ErrInvalidBlockFile = errors.New("invalid block file")

// FileSource serves blocks from a file with one hex encoded block per line, the n-th block
// being at height n. Blank lines and lines starting with # are skipped. The file is read again
// whenever it changed on disk.
type FileSource struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	blocks  []*wire.MsgBlock
}

func NewFileSource(path string) (*FileSource, error) {
	f := &FileSource{path: path}

	if err := f.reload(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *FileSource) GetBlockCount(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reloadIfChanged(); err != nil {
		return 0, err
	}

	return int64(len(f.blocks)), nil
}

func (f *FileSource) GetBlockByHeight(_ context.Context, height int64) (*wire.MsgBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if height < 0 || height >= int64(len(f.blocks)) {
		return nil, nil
	}

	return f.blocks[height], nil
}

func (f *FileSource) reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.reloadIfChanged()
}

func (f *FileSource) reloadIfChanged() error {
	info, err := os.Stat(f.path)
	if err != nil {
		return err
	}

	if f.blocks != nil && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	blocks, err := ReadBlocks(file)
	if err != nil {
		return errors.Join(ErrInvalidBlockFile, fmt.Errorf("file %s", f.path), err)
	}

	f.blocks = blocks
	f.modTime = info.ModTime()
	f.size = info.Size()

	return nil
}

// ReadBlocks decodes hex encoded blocks, one per line.
func ReadBlocks(r io.Reader) ([]*wire.MsgBlock, error) {
	blocks := make([]*wire.MsgBlock, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		raw, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		block := &wire.MsgBlock{}
		if err = block.Deserialize(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		blocks = append(blocks, block)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return blocks, nil
}

// WriteBlocks hex encodes blocks, one per line.
func WriteBlocks(w io.Writer, blocks ...*wire.MsgBlock) error {
	var buf bytes.Buffer
	for _, b := range blocks {
		buf.Reset()
		if err := b.Serialize(&buf); err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w, hex.EncodeToString(buf.Bytes())); err != nil {
			return err
		}
	}

	return nil
}
