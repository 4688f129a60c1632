// Package assets is a manager that loads a directory of asset files during
// preload, a few files per frame, and unloads them the same way on release.
package assets

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"haloframe/internal/common/fsutil"
	"haloframe/internal/lifecycle"
	"haloframe/internal/statuscode"
	"haloframe/internal/utility/crypt"
)

const defaultPerFrame = 4

// Options configure a Loader.
type Options struct {
	Dir  string
	Exts []string // e.g. ".bundle"; empty loads every file
	// PerFrame is how many files are loaded or unloaded per progress poll.
	PerFrame int
	// Payload decoding: AES when AESPassword is set, else XOR when XORKey is set.
	XORKey      []byte
	AESPassword string
	AESIV       string
}

// Loader holds decoded asset payloads keyed by file name.
type Loader struct {
	opts Options
	log  zerolog.Logger

	staging []string
	evict   []string
	total   int
	assets  map[string][]byte
	bytes   int
	err     error
}

var (
	_ lifecycle.PreloadReporter      = (*Loader)(nil)
	_ lifecycle.ReleaseReporter      = (*Loader)(nil)
	_ lifecycle.PreloadCompletedHook = (*Loader)(nil)
)

func New(opts Options) *Loader {
	if opts.PerFrame <= 0 {
		opts.PerFrame = defaultPerFrame
	}
	return &Loader{opts: opts, log: zerolog.Nop()}
}

func (l *Loader) Name() string { return "assets" }

func (l *Loader) OnPreload() error {
	dir, err := fsutil.ExpandHome(l.opts.Dir)
	if err != nil {
		return statuscode.ReadFileError.Errorf("assets %s: %w", l.opts.Dir, err)
	}
	if !fsutil.PathExists(dir) {
		return statuscode.DirectoryNotFound.Errorf("assets %s: no such directory", l.opts.Dir)
	}
	files, err := fsutil.ListFiles(dir, l.opts.Exts...)
	if err != nil {
		return statuscode.ReadFileError.Errorf("assets %s: %w", l.opts.Dir, err)
	}
	l.staging = files
	l.total = len(files)
	l.assets = make(map[string][]byte, len(files))
	l.bytes = 0
	l.err = nil
	return nil
}

// PreloadProgress loads up to PerFrame staged files and reports the share
// loaded so far. Load errors are kept and surfaced by OnPreloadCompleted.
func (l *Loader) PreloadProgress() float64 {
	for i := 0; i < l.opts.PerFrame && len(l.staging) > 0; i++ {
		path := l.staging[0]
		l.staging = l.staging[1:]
		if err := l.load(path); err != nil && l.err == nil {
			l.err = err
		}
	}
	if l.total == 0 {
		return 1
	}
	return float64(l.total-len(l.staging)) / float64(l.total)
}

func (l *Loader) load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return statuscode.ReadFileError.Errorf("read %s: %w", path, err)
	}
	switch {
	case l.opts.AESPassword != "":
		if b, err = crypt.AESDecrypt(b, l.opts.AESPassword, l.opts.AESIV); err != nil {
			return err
		}
	case len(l.opts.XORKey) > 0:
		if err := crypt.SelfXor(b, l.opts.XORKey); err != nil {
			return err
		}
	}
	l.assets[filepath.Base(path)] = b
	l.bytes += len(b)
	return nil
}

// OnPreloadCompleted drops the staging list and reports the first load error.
func (l *Loader) OnPreloadCompleted() error {
	l.staging = nil
	return l.err
}

func (l *Loader) OnInitialization(env lifecycle.Env) error {
	l.log = env.Log
	l.log.Info().Int("assets", len(l.assets)).Int("bytes", l.bytes).Str("dir", l.opts.Dir).Msg("assets loaded")
	return nil
}

// Asset returns the decoded payload of a loaded file.
func (l *Loader) Asset(name string) ([]byte, bool) {
	b, ok := l.assets[name]
	return b, ok
}

// Len returns the number of loaded assets.
func (l *Loader) Len() int { return len(l.assets) }

func (l *Loader) OnRelease() error {
	l.evict = make([]string, 0, len(l.assets))
	for name := range l.assets {
		l.evict = append(l.evict, name)
	}
	sort.Strings(l.evict)
	l.total = len(l.evict)
	return nil
}

// ReleaseProgress unloads up to PerFrame assets.
func (l *Loader) ReleaseProgress() float64 {
	for i := 0; i < l.opts.PerFrame && len(l.evict) > 0; i++ {
		name := l.evict[0]
		l.evict = l.evict[1:]
		l.bytes -= len(l.assets[name])
		delete(l.assets, name)
	}
	if l.total == 0 {
		return 1
	}
	return float64(l.total-len(l.evict)) / float64(l.total)
}

func (l *Loader) OnReleaseCompleted() error {
	l.log.Debug().Msg("assets released")
	l.assets = nil
	l.evict = nil
	return nil
}
