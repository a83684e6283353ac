package feature

import (
	"errors"
	"math"
	"strconv"
)

// Coord：通过校验的平面坐标
type Coord struct {
	X float64
	Y float64
}

// Pair：待校验的一对原始值
type Pair struct {
	X Value
	Y Value
}

// PairOf：取数组前两个元素组成坐标对，缺失位置为 Missing
func PairOf(v Value) Pair {
	return Pair{X: v.Index(0), Y: v.Index(1)}
}

// 文档注释：坐标规范化（全函数）
// 背景：输入可能是整数、浮点、十进制原文、字符串或空值；十进制先转为 float64，其余数值表示原样接受。
// 约束：先完成两个值的类型校验，再判断有限性；因此 [NaN,"a"] 归入 non_numeric 而非 non_finite。
// 返回：成功时 Reason 为空串；失败时 Coord 为零值。
func Normalize(p Pair) (Coord, Reason) {
	if p.X.kind == KindMissing || p.Y.kind == KindMissing {
		return Coord{}, ReasonEmptyCoords
	}
	x, r := p.X.number()
	if r != "" {
		return Coord{}, r
	}
	y, r := p.Y.number()
	if r != "" {
		return Coord{}, r
	}
	if !finite(x) || !finite(y) {
		return Coord{}, ReasonNonFinite
	}
	return Coord{X: x, Y: y}, ""
}

// number：类型校验与数值转换，不判断有限性
func (v Value) number() (float64, Reason) {
	switch v.kind {
	case KindInt:
		return float64(v.i), ""
	case KindFloat:
		return v.f, ""
	case KindDecimal:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			// 超出 float64 范围时 ParseFloat 返回 ±Inf，交由有限性判断
			if errors.Is(err, strconv.ErrRange) {
				return f, ""
			}
			return 0, ReasonValueError
		}
		return f, ""
	case KindMissing:
		return 0, ReasonEmptyCoords
	case KindNull, KindString, KindBool, KindArray, KindObject:
		return 0, ReasonNonNumeric
	default:
		return 0, ReasonOther
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
