package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Tunables are the runtime-changeable knobs of the graph pipeline. They are
// constants in spirit, not semantics: the invariants (size bounds, mode
// ordering, throttle coalescing) hold for any valid values.
type Tunables struct {
	Graph GraphTunables `json:"graph"`
	Cache CacheTunables `json:"cache"`
	View  ViewTunables  `json:"view"`
}

// GraphTunables drive node size derivation.
type GraphTunables struct {
	SizeBase      float64 `json:"sizeBase"`
	SizeIncrement float64 `json:"sizeIncrement"`
	SizeMax       float64 `json:"sizeMax"`
}

// CacheTunables drive payload cache entry lifetimes.
type CacheTunables struct {
	AbsoluteTTLSeconds int `json:"absoluteTtlSeconds"`
	SlidingTTLSeconds  int `json:"slidingTtlSeconds"`
}

// ViewTunables drive the client render engine defaults.
type ViewTunables struct {
	HighPerformanceThreshold int     `json:"highPerformanceThreshold"`
	UltraThreshold           int     `json:"ultraThreshold"`
	BatchSize                int     `json:"batchSize"`
	ThrottleMs               int     `json:"throttleMs"`
	CullMargin               float64 `json:"cullMargin"`
}

// DefaultTunables returns the reference values.
func DefaultTunables() Tunables {
	return Tunables{
		Graph: GraphTunables{
			SizeBase:      20,
			SizeIncrement: 5,
			SizeMax:       80,
		},
		Cache: CacheTunables{
			AbsoluteTTLSeconds: 300,
			SlidingTTLSeconds:  120,
		},
		View: ViewTunables{
			HighPerformanceThreshold: 500,
			UltraThreshold:           1000,
			BatchSize:                100,
			ThrottleMs:               200,
			CullMargin:               100,
		},
	}
}

// Validate rejects values that would break pipeline invariants.
func (t Tunables) Validate() error {
	if t.Graph.SizeBase <= 0 || t.Graph.SizeIncrement < 0 || t.Graph.SizeMax < t.Graph.SizeBase {
		return fmt.Errorf("invalid size scale: base=%v increment=%v max=%v", t.Graph.SizeBase, t.Graph.SizeIncrement, t.Graph.SizeMax)
	}
	if t.Cache.AbsoluteTTLSeconds <= 0 || t.Cache.SlidingTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if t.Cache.SlidingTTLSeconds > t.Cache.AbsoluteTTLSeconds {
		return fmt.Errorf("sliding TTL cannot exceed absolute TTL")
	}
	if t.View.HighPerformanceThreshold <= 0 || t.View.UltraThreshold <= t.View.HighPerformanceThreshold {
		return fmt.Errorf("mode thresholds must be positive and ordered")
	}
	if t.View.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if t.View.ThrottleMs <= 0 {
		return fmt.Errorf("throttle window must be positive")
	}
	return nil
}

// TunablesWatcher hot-reloads the tunables file and hands out the current
// snapshot. When no file is configured it simply serves the defaults.
type TunablesWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  Tunables
	mu       sync.RWMutex
	onChange []func(Tunables)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewTunablesWatcher loads the initial tunables and prepares the file
// watcher. path may be empty, in which case reloading is disabled.
func NewTunablesWatcher(path string, logger *zap.Logger) (*TunablesWatcher, error) {
	w := &TunablesWatcher{
		path:    path,
		current: DefaultTunables(),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	if path == "" {
		return w, nil
	}

	tunables, err := loadTunablesFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial tunables: %w", err)
	}
	w.current = tunables

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch tunables file: %w", err)
	}
	// Watch the directory too, for atomic saves done as renames.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch tunables directory", zap.Error(err))
	}
	w.watcher = watcher

	return w, nil
}

// Start begins watching for tunables changes.
func (w *TunablesWatcher) Start() {
	if w.watcher == nil {
		return
	}
	go w.watchLoop()
	w.logger.Info("Tunables watcher started", zap.String("path", w.path))
}

// Stop stops watching.
func (w *TunablesWatcher) Stop() {
	close(w.stopCh)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

// Current returns the current tunables snapshot.
func (w *TunablesWatcher) Current() Tunables {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after every successful reload.
func (w *TunablesWatcher) OnChange(fn func(Tunables)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

func (w *TunablesWatcher) watchLoop() {
	var debounce *time.Timer
	const debounceDuration = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Tunables watcher error", zap.Error(err))
		}
	}
}

func (w *TunablesWatcher) reload() {
	tunables, err := loadTunablesFromFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload tunables, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = tunables
	handlers := make([]func(Tunables), len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()

	for _, handler := range handlers {
		go handler(tunables)
	}

	w.logger.Info("Tunables reloaded", zap.String("path", w.path))
}

func loadTunablesFromFile(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, err
	}

	tunables := DefaultTunables()
	if err := json.Unmarshal(data, &tunables); err != nil {
		return Tunables{}, fmt.Errorf("failed to parse tunables: %w", err)
	}
	if err := tunables.Validate(); err != nil {
		return Tunables{}, err
	}

	return tunables, nil
}
