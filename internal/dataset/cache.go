// 包 dataset：进程级轨迹数据缓存，首次访问时触发导入，之后只读共享
package dataset

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/fabhiansan/tsunami-simulation/internal/ingest"
	"github.com/fabhiansan/tsunami-simulation/internal/logger"
	"github.com/fabhiansan/tsunami-simulation/internal/timestep"
)

// State：缓存状态
type State int32

const (
	StateEmpty State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// AvailableLimit：时间步未命中时返回的可用时间步数量
const AvailableLimit = 20

// Loader：构建一次完整数据的函数，通常为 ingest.File 的闭包
type Loader func(ctx context.Context) (*ingest.Result, error)

// FileLoader：从固定路径流式导入
func FileLoader(path string, opts ingest.Options) Loader {
	return func(ctx context.Context) (*ingest.Result, error) {
		return ingest.File(ctx, path, opts)
	}
}

// NotFoundError：请求的时间步不在索引中（非致命）
type NotFoundError struct {
	Step      int
	Available []int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Timestep %d not found", e.Step)
}

// 文档注释：轨迹数据缓存（Empty → Building → Ready）
// 背景：导入是整文件扫描，代价高；并发请求在 Building 期间合并到同一次构建（singleflight），构建完成后通过原子指针发布，读路径无锁。
// 约束：构建在脱离调用方取消信号的上下文中运行，单个请求超时只影响该请求，不会中断或污染共享构建；构建失败不缓存，下次访问重试。
// 约束：Invalidate 通过代际计数丢弃进行中构建的结果；代际判断与发布在 mu 内完成，与 Invalidate 互斥。
type Cache struct {
	load    Loader
	flight  singleflight.Group
	mu      sync.Mutex
	cur     atomic.Pointer[ingest.Result]
	state   atomic.Int32
	gen     atomic.Uint64
	builds  atomic.Int64
	onBuilt []func(*ingest.Result)
	onError []func(error)

	// publishHook：测试用，在持锁发布前调用
	publishHook func()
}

// Option：缓存可选参数
type Option func(*Cache)

// WithOnBuilt：构建成功后回调（在构建协程内同步执行）
func WithOnBuilt(fn func(*ingest.Result)) Option {
	return func(c *Cache) { c.onBuilt = append(c.onBuilt, fn) }
}

// WithOnError：构建失败后回调
func WithOnError(fn func(error)) Option {
	return func(c *Cache) { c.onError = append(c.onError, fn) }
}

func New(load Loader, opts ...Option) *Cache {
	c := &Cache{load: load}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State：当前状态
func (c *Cache) State() State { return State(c.state.Load()) }

// Builds：已启动的构建次数（含失败）
func (c *Cache) Builds() int64 { return c.builds.Load() }

// Get：返回已就绪的数据，必要时触发或等待构建
func (c *Cache) Get(ctx context.Context) (*ingest.Result, error) {
	if r := c.cur.Load(); r != nil {
		return r, nil
	}
	gen := c.gen.Load()
	ch := c.flight.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		if r := c.cur.Load(); r != nil {
			return r, nil
		}
		return c.build(context.WithoutCancel(ctx), gen)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ingest.Result), nil
	}
}

func (c *Cache) build(ctx context.Context, gen uint64) (*ingest.Result, error) {
	l := logger.L()
	c.setState(gen, StateBuilding)
	c.builds.Add(1)
	l.Info("cache_build_begin", "gen", gen)
	res, err := c.load(ctx)
	if err != nil {
		c.setState(gen, StateEmpty)
		l.Error("cache_build_error", "gen", gen, "err", err)
		for _, fn := range c.onError {
			fn(err)
		}
		return nil, err
	}
	if c.publish(gen, res) {
		l.Info("cache_build_ready", "gen", gen, "run_id", res.Summary.RunID)
	} else {
		l.Info("cache_build_discarded", "gen", gen)
	}
	for _, fn := range c.onBuilt {
		fn(res)
	}
	return res, nil
}

// Invalidate：丢弃当前数据，下次访问重新导入
func (c *Cache) Invalidate() {
	c.mu.Lock()
	gen := c.gen.Add(1)
	c.cur.Store(nil)
	c.state.Store(int32(StateEmpty))
	c.mu.Unlock()
	logger.L().Info("cache_invalidated", "gen", gen)
}

// setState：仅当 gen 仍为当前代际时更新状态，旧代际的构建不覆盖新代际
func (c *Cache) setState(gen uint64, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen.Load() == gen {
		c.state.Store(int32(st))
	}
}

// publish：代际未变时发布结果并置为 Ready
func (c *Cache) publish(gen uint64, res *ingest.Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen.Load() != gen {
		return false
	}
	if c.publishHook != nil {
		c.publishHook()
	}
	c.cur.Store(res)
	c.state.Store(int32(StateReady))
	return true
}

// Metadata：导入统计；无可用数据时返回带 Error/Suggestion 的统计而非错误
// 异常：仅在文件无法读取或结构非法时返回 error
func (c *Cache) Metadata(ctx context.Context) (timestep.Summary, error) {
	r, err := c.Get(ctx)
	if err != nil {
		return timestep.Summary{}, err
	}
	return r.Summary, nil
}

// Timestep：读取单个时间步；不存在时返回 *NotFoundError，附带前 20 个可用时间步
func (c *Cache) Timestep(ctx context.Context, step int) (timestep.Bucket, error) {
	r, err := c.Get(ctx)
	if err != nil {
		return timestep.Bucket{}, err
	}
	return Lookup(r, step)
}

// Lookup：在已构建的结果中读取时间步
func Lookup(r *ingest.Result, step int) (timestep.Bucket, error) {
	b, ok := r.Index.Bucket(step)
	if !ok {
		return timestep.Bucket{}, &NotFoundError{Step: step, Available: r.Index.Head(AvailableLimit)}
	}
	return b, nil
}
