// Package sleuthkit reads evidence images by driving The Sleuth Kit
// command-line tools.
package sleuthkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"forensdesk/internal/adapters/carver"
	"forensdesk/internal/adapters/filetype"
	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

// BackendName identifies sleuthkit sessions
const BackendName = "sleuthkit"

// sectorSize is the unit mmls reports offsets in
const sectorSize = 512

// Image is an evidence file opened through TSK
type Image struct {
	path        string
	runner      Runner
	partitions  []domain.Partition
	wiped       bool
	carver      *carver.Carver
	searchLimit int
	logger      *zap.Logger
}

// Opener builds sleuthkit images
type Opener struct {
	Runner      Runner
	CarveLimit  int64
	SearchLimit int
	Logger      *zap.Logger
}

// NewOpener creates an opener that runs tools from toolDir (PATH when empty)
func NewOpener(toolDir string, carveLimit int64, searchLimit int, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{
		Runner:      ExecRunner{Dir: toolDir},
		CarveLimit:  carveLimit,
		SearchLimit: searchLimit,
		Logger:      logger,
	}
}

func (o *Opener) Name() string {
	return BackendName
}

// Open probes the image. Missing tools are reported as
// ports.ErrBackendUnavailable; an unreadable file is a plain error.
func (o *Opener) Open(ctx context.Context, imagePath string) (ports.ImageCapability, error) {
	if checker, ok := o.Runner.(interface{ Check() error }); ok {
		if err := checker.Check(); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", imagePath)
	}

	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	img := &Image{
		path:        imagePath,
		runner:      o.Runner,
		carver:      carver.New(o.CarveLimit),
		searchLimit: o.SearchLimit,
		logger:      logger.With(zap.String("image", path.Base(imagePath))),
	}
	if err := img.probe(ctx, info.Size()); err != nil {
		return nil, err
	}
	return img, nil
}

// probe reads the partition table, falling back to a bare file system at
// offset 0. An image with neither is wiped.
func (i *Image) probe(ctx context.Context, size int64) error {
	out, err := i.runner.Run(ctx, "mmls", i.path)
	if err == nil {
		i.partitions = ParsePartitions(out)
	} else if ctx.Err() != nil || errors.Is(err, ports.ErrBackendUnavailable) {
		return err
	} else {
		i.logger.Debug("no partition table", zap.Error(err))
	}
	if len(i.partitions) > 0 {
		return nil
	}

	out, err = i.runner.Run(ctx, "fsstat", i.path)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ports.ErrBackendUnavailable) {
			return err
		}
		i.logger.Info("no recognizable file system, treating image as wiped", zap.Error(err))
		i.wiped = true
		return nil
	}

	label := ParseFSType(out)
	if label == "" {
		label = "File System"
	}
	i.partitions = []domain.Partition{{Index: 1, Label: label, StartOffset: 0, Size: size / sectorSize}}
	return nil
}

func (i *Image) ListPartitions(_ context.Context) ([]domain.Partition, error) {
	parts := make([]domain.Partition, len(i.partitions))
	copy(parts, i.partitions)
	return parts, nil
}

func (i *Image) IsWiped() bool {
	return i.wiped
}

func (i *Image) ListDirectory(ctx context.Context, startOffset int64, inode *uint64) ([]domain.DirectoryEntry, error) {
	if i.wiped {
		return nil, nil
	}

	args := []string{"-l", "-u", "-z", "UTC", "-o", strconv.FormatInt(startOffset, 10), i.path}
	if inode != nil {
		args = append(args, strconv.FormatUint(*inode, 10))
	}
	out, err := i.runner.Run(ctx, "fls", args...)
	if err != nil {
		if inode != nil && notFoundHint(err) {
			return nil, fmt.Errorf("directory %d: %w", *inode, ports.ErrNotFound)
		}
		return nil, err
	}

	rows, err := ParseEntries(out)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.DirectoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.DirectoryEntry())
	}
	domain.SortEntries(entries)
	return entries, nil
}

func (i *Image) ReadFile(ctx context.Context, inode uint64, startOffset int64) (*domain.FileContent, error) {
	if i.wiped {
		return nil, nil
	}

	data, err := i.runner.Run(ctx, "icat", "-o", strconv.FormatInt(startOffset, 10), i.path, strconv.FormatUint(inode, 10))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		i.logger.Debug("icat could not resolve inode", zap.Uint64("inode", inode), zap.Error(err))
		return nil, nil
	}
	return &domain.FileContent{
		Data:     data,
		Metadata: domain.FileMetadata{Inode: inode, Size: int64(len(data))},
	}, nil
}

func (i *Image) DetectType(content []byte) domain.FileType {
	return filetype.Detect(content)
}

// Carve scans unallocated blocks of every partition. A wiped image is
// scanned raw. Offsets are reported from the start of the image.
func (i *Image) Carve(ctx context.Context, fileType string) ([]domain.CarvedFile, error) {
	if i.wiped {
		f, err := os.Open(i.path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return i.carveStream(ctx, f, "raw", fileType, rawLocator{})
	}

	var carved []domain.CarvedFile
	for _, p := range i.partitions {
		stream, err := i.runner.Stream(ctx, "blkls", "-o", strconv.FormatInt(p.StartOffset, 10), i.path)
		if err != nil {
			return nil, err
		}
		loc := &unallocLocator{img: i, partition: p}
		files, err := i.carveStream(ctx, stream, fmt.Sprintf("p%d", p.Index), fileType, loc)
		if cerr := stream.Close(); cerr != nil && err == nil && ctx.Err() == nil {
			// blkls fails on volumes without a file system; those have nothing unallocated to offer
			i.logger.Debug("blkls failed", zap.Int("partition", p.Index), zap.Error(cerr))
		}
		if err != nil {
			return nil, err
		}
		carved = append(carved, files...)
	}
	return carved, nil
}

// locator maps an offset in a carved stream to an offset in the image
type locator interface {
	locate(ctx context.Context, streamOffset int64) (int64, bool)
}

type rawLocator struct{}

func (rawLocator) locate(_ context.Context, off int64) (int64, bool) {
	return off, true
}

// unallocLocator maps offsets in a partition's blkls stream, where
// unallocated blocks sit back to back, through blkcalc
type unallocLocator struct {
	img       *Image
	partition domain.Partition
	blockSize int64
	failed    bool
}

func (l *unallocLocator) locate(ctx context.Context, off int64) (int64, bool) {
	if l.failed {
		return 0, false
	}
	start := strconv.FormatInt(l.partition.StartOffset, 10)
	if l.blockSize == 0 {
		out, err := l.img.runner.Run(ctx, "fsstat", "-o", start, l.img.path)
		if err == nil {
			l.blockSize = ParseBlockSize(out)
		}
		if l.blockSize == 0 {
			l.img.logger.Debug("no block size for partition", zap.Int("partition", l.partition.Index), zap.Error(err))
			l.failed = true
			return 0, false
		}
	}

	unit := off / l.blockSize
	out, err := l.img.runner.Run(ctx, "blkcalc", "-o", start, "-u", strconv.FormatInt(unit, 10), l.img.path)
	if err != nil {
		l.img.logger.Debug("blkcalc failed", zap.Int("partition", l.partition.Index), zap.Int64("unit", unit), zap.Error(err))
		return 0, false
	}
	addr, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		l.img.logger.Debug("unexpected blkcalc output", zap.ByteString("output", out))
		return 0, false
	}
	return l.partition.StartOffset*sectorSize + addr*l.blockSize + off%l.blockSize, true
}

// carveStream names each hit after its image offset. A hit that cannot be
// located keeps its stream offset in the name, marked with a "u".
func (i *Image) carveStream(ctx context.Context, r io.Reader, area, fileType string, loc locator) ([]domain.CarvedFile, error) {
	res, err := i.carver.Scan(ctx, r, fileType)
	if err != nil {
		return nil, err
	}
	if res.Truncated {
		i.logger.Warn("carve stopped at byte limit", zap.String("area", area), zap.Int64("scanned", res.Scanned))
	}

	carved := make([]domain.CarvedFile, 0, len(res.Files))
	for _, f := range res.Files {
		offset, ok := loc.locate(ctx, f.Offset)
		name := fmt.Sprintf("%s_%010d.%s", area, offset, f.Type.Extension)
		if !ok {
			offset = -1
			name = fmt.Sprintf("%s_u%010d.%s", area, f.Offset, f.Type.Extension)
		}
		carved = append(carved, domain.CarvedFile{
			DirectoryEntry: domain.DirectoryEntry{
				Name:       name,
				Size:       domain.HumanSize(f.Length),
				Timestamps: domain.UnknownTimestamps(),
			},
			Path:        "/$Carved/" + name,
			Type:        f.Type.Type,
			Extension:   f.Type.Extension,
			Description: f.Type.Description,
			Offset:      offset,
		})
	}
	return carved, nil
}

func (i *Image) Backend() string {
	return BackendName
}

func (i *Image) Close() error {
	return nil
}
