package feature

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind：原始坐标值的表示类型
type Kind uint8

const (
	KindMissing Kind = iota
	KindNull
	KindInt
	KindFloat
	KindDecimal
	KindString
	KindBool
	KindArray
	KindObject
	KindUnsupported
)

var kindNames = [...]string{"missing", "null", "int", "float", "decimal", "string", "bool", "array", "object", "unsupported"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// 文档注释：原始值（带标签的联合体）
// 背景：流式解析开启 UseNumber 后数字以 json.Number 原文保留，等价于任意精度十进制；整数/浮点/字符串/空值等表示在此统一承载。
// 约束：零值即 Missing；数组与对象仅保存解码树的引用，不复制。
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	arr  []any
}

func Missing() Value { return Value{} }
func Null() Value { return Value{kind: KindNull} }
func Int(n int64) Value { return Value{kind: KindInt, i: n} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Decimal(text string) Value { return Value{kind: KindDecimal, s: text} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Array(items []any) Value { return Value{kind: KindArray, arr: items} }

// Of：将解码树中的任意节点包装为 Value
// 约束：未识别的动态类型标记为 Unsupported，由规范化阶段归入 other
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case json.Number:
		return Decimal(string(x))
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint:
		return ofUint(uint64(x))
	case uint64:
		return ofUint(x)
	case string:
		return String(x)
	case bool:
		v := Value{kind: KindBool}
		if x {
			v.i = 1
		}
		return v
	case []any:
		return Array(x)
	case map[string]any:
		return Value{kind: KindObject}
	default:
		return Value{kind: KindUnsupported}
	}
}

func ofUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func (v Value) Kind() Kind { return v.kind }

// Len：数组长度；非数组为 0
func (v Value) Len() int { return len(v.arr) }

// Index：数组第 i 个元素；越界或非数组返回 Missing
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Missing()
	}
	return Of(v.arr[i])
}

// String：用于日志与样例输出的简短文本
func (v Value) String() string {
	switch v.kind {
	case KindMissing:
		return "<missing>"
	case KindNull:
		return "null"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDecimal:
		return v.s
	case KindString:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.i == 1)
	case KindArray:
		return "[array len=" + strconv.Itoa(len(v.arr)) + "]"
	case KindObject:
		return "{object}"
	default:
		return "<unsupported>"
	}
}
