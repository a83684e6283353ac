package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fabhiansan/tsunami-simulation/internal/logger"
)

// DefaultDebounce：文件事件合并窗口
const DefaultDebounce = 500 * time.Millisecond

// 文档注释：源文件变更监听器
// 背景：模拟器会整体重写输出文件，写入期间会产生大量 Write 事件；合并窗口结束后只失效一次缓存。
// 约束：监听父目录而非文件本身，以覆盖 rename/替换式写入；只响应目标文件名的事件。
type Watcher struct {
	cache    *Cache
	path     string
	debounce time.Duration
	warm     bool
	fw       *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	fired chan struct{}
}

// WatchOptions：监听参数
type WatchOptions struct {
	Debounce time.Duration
	// Warm：失效后立即在后台重建
	Warm bool
}

// NewWatcher：为 cache 的源文件 path 创建监听器
func NewWatcher(c *Cache, path string, opts WatchOptions) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	d := opts.Debounce
	if d <= 0 {
		d = DefaultDebounce
	}
	return &Watcher{
		cache:    c,
		path:     abs,
		debounce: d,
		warm:     opts.Warm,
		fw:       fw,
		fired:    make(chan struct{}, 1),
	}, nil
}

// Run：阻塞处理事件直到 ctx 取消；返回前关闭底层监听
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	l := logger.L()
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			l.Debug("watch_event", "path", ev.Name, "op", ev.Op.String())
			w.schedule(ctx)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch_error", "path", w.path, "err", err)
		}
	}
}

// Fired：每次合并窗口触发失效后收到一个信号（缓冲 1，未读取时丢弃）
func (w *Watcher) Fired() <-chan struct{} { return w.fired }

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return abs == w.path
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx) })
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	logger.L().Info("watch_invalidate", "path", w.path)
	w.cache.Invalidate()
	if w.warm {
		go func() {
			if _, err := w.cache.Get(ctx); err != nil {
				logger.L().Warn("watch_warm_error", "path", w.path, "err", err)
			}
		}()
	}
	select {
	case w.fired <- struct{}{}:
	default:
	}
}
