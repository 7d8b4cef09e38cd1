package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"formfill/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// OperationLoadedPrompts holds prompt content loaded from files for one
// operation. Empty fields mean no file was configured for that slot.
type OperationLoadedPrompts struct {
	SystemPrompt string
	UserPrompt   string
}

// promptStore keeps file-loaded prompt content and remembers which file feeds
// which slot so the watcher can reload on change.
type promptStore struct {
	mu      sync.RWMutex
	prompts map[string]string // slot ("answer.system", ...) -> content
	files   map[string]string // absolute file path -> slot
}

var store = &promptStore{
	prompts: make(map[string]string),
	files:   make(map[string]string),
}

// GetPromptsForOperation returns the file-loaded prompts for an operation.
func GetPromptsForOperation(operation string) OperationLoadedPrompts {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return OperationLoadedPrompts{
		SystemPrompt: store.prompts[operation+".system"],
		UserPrompt:   store.prompts[operation+".user"],
	}
}

// loadPromptsFromFiles reads every configured prompt file into the store.
// Missing files are an error: a configured path that cannot be read should
// fail startup, not silently use a default.
func (c *Config) loadPromptsFromFiles() error {
	slots := []struct {
		slot string
		path string
	}{
		{"answer.system", firstNonEmpty(c.AI.Answer.CustomPrompts.SystemPrompts.AnswerQuestionFile, c.AI.CustomPrompts.SystemPrompts.AnswerQuestionFile)},
		{"answer.user", firstNonEmpty(c.AI.Answer.CustomPrompts.UserPrompts.AnswerQuestionFile, c.AI.CustomPrompts.UserPrompts.AnswerQuestionFile)},
		{"extract.system", firstNonEmpty(c.AI.Extract.CustomPrompts.SystemPrompts.ExtractProfileFile, c.AI.CustomPrompts.SystemPrompts.ExtractProfileFile)},
		{"extract.user", firstNonEmpty(c.AI.Extract.CustomPrompts.UserPrompts.ExtractProfileFile, c.AI.CustomPrompts.UserPrompts.ExtractProfileFile)},
	}

	for _, s := range slots {
		if s.path == "" {
			continue
		}
		if err := loadPromptFile(s.slot, s.path); err != nil {
			return err
		}
	}
	return nil
}

func loadPromptFile(slot, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid prompt file path %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("failed to read prompt file %s: %w", abs, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return fmt.Errorf("prompt file %s is empty", abs)
	}

	store.mu.Lock()
	store.prompts[slot] = content
	store.files[abs] = slot
	store.mu.Unlock()
	return nil
}

// WatchPromptFiles hot-reloads configured prompt files when they change on
// disk. The returned stop function closes the watcher. It is a no-op when no
// prompt files are configured.
func WatchPromptFiles(logger *errors.Logger) (func(), error) {
	store.mu.RLock()
	paths := make([]string, 0, len(store.files))
	for path := range store.files {
		paths = append(paths, path)
	}
	store.mu.RUnlock()

	if len(paths) == 0 {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt file watcher: %w", err)
	}

	// Watch directories rather than files so editors that replace files
	// (rename + create) still trigger reloads.
	dirs := make(map[string]bool)
	for _, path := range paths {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch prompt directory %s: %w", dir, err)
		}
	}

	done := make(chan struct{})
	go func() {
		// Debounce: editors fire several events per save.
		var pending map[string]bool
		var timer *time.Timer
		var timerC <-chan time.Time

		reload := func() {
			for path := range pending {
				store.mu.RLock()
				slot, tracked := store.files[path]
				store.mu.RUnlock()
				if !tracked {
					continue
				}
				if err := loadPromptFile(slot, path); err != nil {
					logger.LogError(err, "Failed to reload prompt file", "path", path)
					continue
				}
				logger.Info("Prompt file reloaded", "path", path, "slot", slot)
			}
			pending = nil
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil {
					continue
				}
				store.mu.RLock()
				_, tracked := store.files[abs]
				store.mu.RUnlock()
				if !tracked {
					continue
				}
				if pending == nil {
					pending = make(map[string]bool)
				}
				pending[abs] = true
				if timer == nil {
					timer = time.NewTimer(500 * time.Millisecond)
					timerC = timer.C
				} else {
					timer.Reset(500 * time.Millisecond)
				}
			case <-timerC:
				reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.LogError(err, "Prompt file watcher error")
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = watcher.Close()
	}
	return stop, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
