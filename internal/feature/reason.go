// 包 feature：单条 GeoJSON 要素的几何分类与坐标规范化，不做 I/O，不持有状态
package feature

// Reason：坐标被拒绝的原因标签（固定枚举集合）
// 约束：空字符串表示接受；新增标签需同步 Reasons 与对外统计口径
type Reason string

const (
	ReasonMissingGeometry Reason = "missing_geometry"
	ReasonEmptyCoords     Reason = "empty_coords"
	ReasonNonNumeric      Reason = "non_numeric"
	ReasonNonFinite       Reason = "non_finite"
	ReasonIndexError      Reason = "index_error"
	ReasonTypeError       Reason = "type_error"
	ReasonValueError      Reason = "value_error"
	ReasonOther           Reason = "other"
)

// Reasons：全部拒绝原因，按统计输出顺序排列
var Reasons = []Reason{
	ReasonMissingGeometry,
	ReasonEmptyCoords,
	ReasonNonNumeric,
	ReasonNonFinite,
	ReasonIndexError,
	ReasonTypeError,
	ReasonValueError,
	ReasonOther,
}

// Valid：是否属于固定枚举
func (r Reason) Valid() bool {
	for _, x := range Reasons {
		if x == r {
			return true
		}
	}
	return false
}
