// Package ingest walks a collection, resolves content identities, and
// records source-tagged metadata entries. Files are independent, so the walk
// feeds a worker pool; the store is the only shared mutable state and every
// find-or-create in it is constraint-backed, so workers never coordinate
// directly.
package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"photomerge/internal/decode"
	"photomerge/internal/identity"
	"photomerge/internal/logging"
	"photomerge/internal/metadata"
	"photomerge/internal/services"
	"photomerge/internal/sidecar"
	"photomerge/internal/store"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".3gp": true, ".m4v": true,
}

// Summary reports what one import run did. Imported counts files that
// created a new identity, Linked counts files that matched an existing one.
type Summary struct {
	Imported int
	Linked   int
	Failed   int
}

// Options wires an Ingester.
type Options struct {
	Store       *store.Store
	Workers     int
	VideoFrames int
	// VideoHammingThreshold bounds the similarity search for re-encoded
	// videos.
	VideoHammingThreshold int
	FFmpeg                string
	FFprobe               string
	Logger                *slog.Logger
}

// Ingester imports one directory tree for one owner.
type Ingester struct {
	store     *store.Store
	workers   int
	frames    int
	threshold int
	ffmpeg    string
	ffprobe   string
	logger    *slog.Logger
}

// New builds an ingester. A non-positive worker count falls back to one
// worker per available CPU.
func New(opts Options) *Ingester {
	frames := opts.VideoFrames
	if frames <= 0 {
		frames = 4
	}
	return &Ingester{
		store:     opts.Store,
		workers:   opts.Workers,
		frames:    frames,
		threshold: opts.VideoHammingThreshold,
		ffmpeg:    opts.FFmpeg,
		ffprobe:   opts.FFprobe,
		logger:    logging.WithComponent(opts.Logger, "ingest"),
	}
}

// Run imports every recognized media file under root for ownerName.
// Per-file failures are recorded and the walk continues; storage failures
// abort the run.
func (ing *Ingester) Run(ctx context.Context, ownerName, root string) (Summary, error) {
	owner, err := ing.store.EnsureOwner(ctx, ownerName)
	if err != nil {
		return Summary{}, err
	}

	files, err := collectMedia(root)
	if err != nil {
		return Summary{}, err
	}
	ing.logger.Info("scan finished", "root", root, "files", len(files))

	workers := ing.workers
	if workers <= 0 {
		workers = defaultWorkerCount()
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	cache := sidecar.NewDirCache()
	paths := make(chan string)
	var (
		mu       sync.Mutex
		summary  Summary
		fatalErr error
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				outcome, err := ing.processFile(ctx, owner.ID, path, cache)
				mu.Lock()
				switch {
				case err != nil && services.Fatal(err):
					if fatalErr == nil {
						fatalErr = err
					}
				case err != nil:
					summary.Failed++
				case outcome.created:
					summary.Imported++
				default:
					summary.Linked++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break feed
		case paths <- path:
		}
	}
	close(paths)
	wg.Wait()

	if fatalErr != nil {
		return summary, fatalErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	ing.logger.Info("import finished",
		"imported", summary.Imported,
		"linked", summary.Linked,
		"failed", summary.Failed)
	return summary, nil
}

func defaultWorkerCount() int {
	return runtime.GOMAXPROCS(0)
}

type fileOutcome struct {
	created bool
}

// processFile is the per-file pipeline: identity, linkage, extraction. Every
// non-fatal error is recorded against the path and swallowed so one bad file
// cannot stop the batch.
func (ing *Ingester) processFile(ctx context.Context, ownerID int64, path string, cache *sidecar.DirCache) (fileOutcome, error) {
	ident, created, err := ing.resolveIdentity(ctx, path)
	if err != nil {
		if services.Fatal(err) {
			return fileOutcome{}, err
		}
		ing.logger.Warn("file skipped", logging.FieldPath, path, logging.Error(err))
		if recordErr := ing.store.RecordFailure(ctx, path, "identity", err.Error()); recordErr != nil {
			return fileOutcome{}, recordErr
		}
		return fileOutcome{}, err
	}

	if !created {
		ing.logger.Debug("duplicate linked",
			logging.FieldIdentity, ident.Key.String(),
			logging.FieldPath, path)
	}

	location, err := ing.store.UpsertLocation(ctx, ident.ID, ownerID, path)
	if err != nil {
		return fileOutcome{}, err
	}

	if err := ing.extractMetadata(ctx, location, path, cache); err != nil {
		return fileOutcome{}, err
	}
	return fileOutcome{created: created}, nil
}

func (ing *Ingester) resolveIdentity(ctx context.Context, path string) (store.Identity, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		img, err := decode.Image(path)
		if err != nil {
			return store.Identity{}, false, err
		}
		return ing.store.FindOrCreateIdentity(ctx, identity.Image(img))
	case videoExtensions[ext]:
		frames, err := decode.VideoFrames(ctx, ing.ffmpeg, ing.ffprobe, path, ing.frames)
		if err != nil {
			return store.Identity{}, false, err
		}
		key, err := identity.Video(frames)
		if err != nil {
			return store.Identity{}, false, err
		}
		// A re-encode shifts a few digest bits; link to a near match
		// before minting a new identity.
		if match, found, err := ing.store.FindSimilarVideo(ctx, key.Digest, ing.threshold); err != nil {
			return store.Identity{}, false, err
		} else if found {
			return match, false, nil
		}
		return ing.store.FindOrCreateIdentity(ctx, key)
	default:
		return store.Identity{}, false, services.Wrap(services.ErrValidation, "ingest", "identify",
			path+": unrecognized media extension", nil)
	}
}

// extractMetadata records what each source asserts about the file.
// Extraction failures mean "entries absent", never a failed import.
func (ing *Ingester) extractMetadata(ctx context.Context, location store.Location, path string, cache *sidecar.DirCache) error {
	if entries := ing.exifEntries(path); len(entries) > 0 {
		if err := ing.store.UpsertEntries(ctx, location.ID, metadata.SourceEXIF, entries); err != nil {
			return err
		}
	}

	var sidecarEntries []metadata.Entry
	for _, doc := range cache.For(path) {
		sidecarEntries = append(sidecarEntries, doc.Entries()...)
	}
	if len(sidecarEntries) > 0 {
		if err := ing.store.UpsertEntries(ctx, location.ID, metadata.SourceSidecar, sidecarEntries); err != nil {
			return err
		}
	}

	for source, entries := range groupBySource(metadata.FromFilename(filepath.Base(path))) {
		if err := ing.store.UpsertEntries(ctx, location.ID, source, entries); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingester) exifEntries(path string) []metadata.Entry {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".tif" && ext != ".tiff" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	entries, err := metadata.FromEXIF(f)
	if err != nil {
		return nil
	}
	return entries
}

func groupBySource(entries []metadata.Entry) map[metadata.SourceKind][]metadata.Entry {
	grouped := make(map[metadata.SourceKind][]metadata.Entry)
	for _, entry := range entries {
		grouped[entry.Source] = append(grouped[entry.Source], entry)
	}
	return grouped
}

// collectMedia walks root and returns every file with a recognized media
// extension, sorted for deterministic feeding.
func collectMedia(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if imageExtensions[ext] || videoExtensions[ext] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "scan", root, err)
	}
	sort.Strings(files)
	return files, nil
}
