package feature

const GeometryMultiPoint = "MultiPoint"

// Candidate：分类器产出的一个待校验坐标；Reason 非空表示结构阶段已判定拒绝
type Candidate struct {
	Pair   Pair
	Reason Reason
}

// 文档注释：按几何类型拆分坐标
// 背景：同一时间步内可能混有 Point 与 MultiPoint，两者都要落入同一个时间步桶。
// 约束：类型名区分大小写，仅 "MultiPoint" 走多点分支；MultiPoint 的每个元素独立判定，单个元素异常不影响兄弟元素；其他类型一律按点处理，且恰好产出一个候选。
func Classify(kind string, payload Value) []Candidate {
	if kind == GeometryMultiPoint {
		return classifyMulti(payload)
	}
	return []Candidate{classifyPoint(payload)}
}

func classifyMulti(payload Value) []Candidate {
	if payload.kind != KindArray {
		return []Candidate{{Reason: ReasonTypeError}}
	}
	out := make([]Candidate, 0, payload.Len())
	for i := 0; i < payload.Len(); i++ {
		el := payload.Index(i)
		switch {
		case el.kind != KindArray:
			out = append(out, Candidate{Reason: ReasonTypeError})
		case el.Len() < 2:
			out = append(out, Candidate{Reason: ReasonEmptyCoords})
		default:
			out = append(out, Candidate{Pair: PairOf(el)})
		}
	}
	return out
}

// classifyPoint：点状几何；首元素本身是数组时下钻一层（如 LineString 取首点）
func classifyPoint(payload Value) Candidate {
	if payload.kind != KindArray {
		return Candidate{Reason: ReasonTypeError}
	}
	first := payload.Index(0)
	if first.kind == KindArray {
		if first.Len() < 2 {
			return Candidate{Reason: ReasonIndexError}
		}
		return Candidate{Pair: PairOf(first)}
	}
	if payload.Len() < 2 {
		return Candidate{Reason: ReasonEmptyCoords}
	}
	return Candidate{Pair: PairOf(payload)}
}
