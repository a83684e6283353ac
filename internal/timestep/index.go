// 包 timestep：按时间步组织的智能体坐标索引与导入统计
package timestep

import "sort"

// Bucket：单个时间步的坐标与类别，三个切片等长，第 i 项描述同一个智能体
type Bucket struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Types []string  `json:"types"`
}

// Len：智能体数量
func (b *Bucket) Len() int { return len(b.X) }

// 文档注释：时间步索引
// 背景：导入阶段按追加顺序写入，完成后由 Freeze 计算有序时间步列表并转为只读，供并发查询共享。
// 约束：Freeze 之后不得再调用 Append；查询返回的 Bucket 与索引共享底层数组，调用方只读。
type Index struct {
	buckets map[int]*Bucket
	steps   []int
	frozen  bool
}

func NewIndex() *Index {
	return &Index{buckets: make(map[int]*Bucket)}
}

// Append：向时间步追加一个智能体，首次出现时创建桶
func (ix *Index) Append(step int, x, y float64, kind string) {
	if ix.frozen {
		panic("timestep: append to frozen index")
	}
	b, ok := ix.buckets[step]
	if !ok {
		b = &Bucket{}
		ix.buckets[step] = b
	}
	b.X = append(b.X, x)
	b.Y = append(b.Y, y)
	b.Types = append(b.Types, kind)
}

// Freeze：结束写入并生成升序时间步列表
func (ix *Index) Freeze() *Index {
	if ix.frozen {
		return ix
	}
	steps := make([]int, 0, len(ix.buckets))
	for k := range ix.buckets {
		steps = append(steps, k)
	}
	sort.Ints(steps)
	ix.steps = steps
	ix.frozen = true
	return ix
}

// Bucket：按时间步读取
func (ix *Index) Bucket(step int) (Bucket, bool) {
	b, ok := ix.buckets[step]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// Timesteps：升序时间步列表（只读，未 Freeze 时为空）
func (ix *Index) Timesteps() []int { return ix.steps }

// Len：时间步数量
func (ix *Index) Len() int { return len(ix.buckets) }

// Agents：全部时间步的坐标总数
func (ix *Index) Agents() int {
	n := 0
	for _, b := range ix.buckets {
		n += b.Len()
	}
	return n
}

// Head：前 n 个时间步，用于未命中时提示可用值
func (ix *Index) Head(n int) []int {
	if n > len(ix.steps) {
		n = len(ix.steps)
	}
	out := make([]int, n)
	copy(out, ix.steps[:n])
	return out
}
