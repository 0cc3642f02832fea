package fs

import (
	"os"
	"sync"
)

// Injected wraps another [FS] and fails selected operations with
// caller-supplied errors. Hooks receive the path and return a non-nil error
// to inject a failure, or nil to delegate to the wrapped filesystem.
//
// Hooks may be swapped at any time via the setters; access is synchronized
// so tests can arm a failure while store goroutines are running.
type Injected struct {
	inner FS

	mu              sync.Mutex
	failWriteAtomic func(path string) error
	failReadFile    func(path string) error
	failRemove      func(path string) error
	failMkdirAll    func(path string) error
}

// NewInjected wraps inner with no failures armed.
func NewInjected(inner FS) *Injected {
	return &Injected{inner: inner}
}

// FailWriteFileAtomic arms hook for WriteFileAtomic. Pass nil to disarm.
func (i *Injected) FailWriteFileAtomic(hook func(path string) error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failWriteAtomic = hook
}

// FailReadFile arms hook for ReadFile. Pass nil to disarm.
func (i *Injected) FailReadFile(hook func(path string) error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failReadFile = hook
}

// FailRemove arms hook for Remove. Pass nil to disarm.
func (i *Injected) FailRemove(hook func(path string) error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failRemove = hook
}

// FailMkdirAll arms hook for MkdirAll. Pass nil to disarm.
func (i *Injected) FailMkdirAll(hook func(path string) error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failMkdirAll = hook
}

func (i *Injected) ReadFile(path string) ([]byte, error) {
	i.mu.Lock()
	hook := i.failReadFile
	i.mu.Unlock()

	if hook != nil {
		if err := hook(path); err != nil {
			return nil, err
		}
	}

	return i.inner.ReadFile(path)
}

func (i *Injected) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	i.mu.Lock()
	hook := i.failWriteAtomic
	i.mu.Unlock()

	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}

	return i.inner.WriteFileAtomic(path, data, perm)
}

func (i *Injected) ReadDir(path string) ([]os.DirEntry, error) {
	return i.inner.ReadDir(path)
}

func (i *Injected) MkdirAll(path string, perm os.FileMode) error {
	i.mu.Lock()
	hook := i.failMkdirAll
	i.mu.Unlock()

	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}

	return i.inner.MkdirAll(path, perm)
}

func (i *Injected) Stat(path string) (os.FileInfo, error) {
	return i.inner.Stat(path)
}

func (i *Injected) Exists(path string) (bool, error) {
	return i.inner.Exists(path)
}

func (i *Injected) Remove(path string) error {
	i.mu.Lock()
	hook := i.failRemove
	i.mu.Unlock()

	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}

	return i.inner.Remove(path)
}

// Compile-time interface check.
var _ FS = (*Injected)(nil)
