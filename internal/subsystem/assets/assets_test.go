package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"haloframe/internal/lifecycle"
	"haloframe/internal/statuscode"
	"haloframe/internal/utility/crypt"
)

func writeAssets(t *testing.T, n int, transform func([]byte) []byte) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		b := []byte(fmt.Sprintf("payload-%d", i))
		if transform != nil {
			b = transform(b)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("a%02d.bundle", i)), b, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestPreloadSpreadsAcrossFrames(t *testing.T) {
	dir := writeAssets(t, 5, nil)
	l := New(Options{Dir: dir, Exts: []string{".bundle"}, PerFrame: 2})
	m := lifecycle.New(l)
	if m.Name() != "assets" {
		t.Fatalf("name = %q", m.Name())
	}
	if err := m.Preload(); err != nil {
		t.Fatalf("preload: %v", err)
	}
	want := []float64{0.4, 0.8, 1}
	for i, w := range want {
		if got := m.PreloadProgress(); got != w {
			t.Fatalf("poll %d = %v, want %v", i, got, w)
		}
		if done := m.IsPreloadDone(); done != (w == 1) {
			t.Fatalf("poll %d done = %v", i, done)
		}
	}
	if err := m.PreloadCompleted(); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if err := m.Initialization(lifecycle.Env{Log: zerolog.Nop()}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if b, ok := l.Asset("a03.bundle"); !ok || string(b) != "payload-3" {
		t.Fatalf("asset = %q %v", b, ok)
	}

	if err := m.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	polls := 0
	for !m.IsReleaseDone() {
		m.ReleaseProgress()
		polls++
	}
	if polls != 3 {
		t.Fatalf("release took %d polls, want 3", polls)
	}
	if err := m.ReleaseCompleted(); err != nil {
		t.Fatalf("release completed: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("assets left after release: %d", l.Len())
	}
}

func TestEmptyDirIsImmediatelyDone(t *testing.T) {
	m := lifecycle.New(New(Options{Dir: t.TempDir()}))
	_ = m.Preload()
	if got := m.PreloadProgress(); got != 1 || !m.IsPreloadDone() {
		t.Fatalf("progress = %v", got)
	}
}

func TestMissingDirFaults(t *testing.T) {
	m := lifecycle.New(New(Options{Dir: filepath.Join(t.TempDir(), "missing")}))
	err := m.Preload()
	if statuscode.CodeOf(err) != statuscode.DirectoryNotFound {
		t.Fatalf("err = %v, want directory_not_found", err)
	}
	if m.Phase() != lifecycle.PhaseFailed {
		t.Fatalf("phase = %s", m.Phase())
	}
}

func TestUnreadableDirFaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := lifecycle.New(New(Options{Dir: path}))
	err := m.Preload()
	if statuscode.CodeOf(err) != statuscode.ReadFileError {
		t.Fatalf("err = %v, want read_file_error", err)
	}
	if m.Phase() != lifecycle.PhaseFailed {
		t.Fatalf("phase = %s", m.Phase())
	}
}

func TestXORDecoding(t *testing.T) {
	key := []byte{0x21, 0x42}
	dir := writeAssets(t, 1, func(b []byte) []byte {
		out, _ := crypt.Xor(b, key)
		return out
	})
	l := New(Options{Dir: dir, XORKey: key})
	m := lifecycle.New(l)
	_ = m.Preload()
	m.PreloadProgress()
	if b, _ := l.Asset("a00.bundle"); string(b) != "payload-0" {
		t.Fatalf("decoded = %q", b)
	}
}

func TestAESDecodeErrorSurfacesOnCompletion(t *testing.T) {
	dir := writeAssets(t, 2, nil) // plaintext, so AES decoding fails
	l := New(Options{Dir: dir, AESPassword: "pw", AESIV: "0123456789abcdef"})
	m := lifecycle.New(l)
	_ = m.Preload()
	for !m.IsPreloadDone() {
		m.PreloadProgress()
	}
	err := m.PreloadCompleted()
	if statuscode.CodeOf(err) != statuscode.EncryptionError {
		t.Fatalf("err = %v, want encryption_error", err)
	}
	if m.Phase() != lifecycle.PhaseFailed {
		t.Fatalf("phase = %s", m.Phase())
	}
}

func TestAESDecoding(t *testing.T) {
	dir := writeAssets(t, 1, func(b []byte) []byte {
		out, err := crypt.AESEncrypt(b, "pw", "0123456789abcdef")
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		return out
	})
	l := New(Options{Dir: dir, AESPassword: "pw", AESIV: "0123456789abcdef"})
	m := lifecycle.New(l)
	_ = m.Preload()
	m.PreloadProgress()
	if err := m.PreloadCompleted(); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if b, _ := l.Asset("a00.bundle"); string(b) != "payload-0" {
		t.Fatalf("decoded = %q", b)
	}
}
