//go:build !windows

package safefile

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestOpenRegular_RejectsFIFO(t *testing.T) {
	fifo := filepath.Join(t.TempDir(), "settings.fifo")
	if err := syscall.Mkfifo(fifo, 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := OpenRegular(fifo)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("OpenRegular() error = %v, want ErrNotRegularFile", err)
	}

	_, err = ReadLimited(fifo, 1024)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("ReadLimited() error = %v, want ErrNotRegularFile", err)
	}
}

func TestReadLimited_RejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "secret.txt")
	link := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(target, []byte("keywords: [x]"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	data, err := ReadLimited(link, 1024)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("ReadLimited() error = %v, want ErrNotRegularFile", err)
	}
	if data != nil {
		t.Errorf("ReadLimited() data = %q, want nil", data)
	}
}

func TestWriteAtomic_ReplacesSymlinkNotTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.yaml")
	link := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(target, []byte("original"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	if err := WriteAtomic(link, []byte("updated"), 0600); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("target content = %q, want %q", got, "original")
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Mode().IsRegular() {
		t.Errorf("link path mode = %v, want regular file", info.Mode())
	}
	data, err := ReadLimited(link, 1024)
	if err != nil {
		t.Fatalf("ReadLimited() error = %v", err)
	}
	if string(data) != "updated" {
		t.Errorf("ReadLimited() = %q, want %q", data, "updated")
	}
}

func TestWriteAtomic_ReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	path := filepath.Join(dir, "settings.yaml")
	if err := WriteAtomic(path, []byte("x"), 0600); err == nil {
		t.Fatal("WriteAtomic() error = nil, want permission error")
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("Lstat() error = %v, want not exist", err)
	}
}
