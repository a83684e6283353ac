// 包 cli：geo-inspect 命令集，对轨迹文件执行一次导入并输出统计、单个时间步或拒绝原因
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fabhiansan/tsunami-simulation/internal/ingest"
	"github.com/fabhiansan/tsunami-simulation/internal/logger"
)

// DefaultPath：未指定 --file 且未设置 GEOJSON_PATH 时读取的文件
const DefaultPath = "output/custom_simulation.geojson"

var (
	filePath   string
	formatFlag string
)

// RootCmd：顶层命令；子命令在各自文件的 init 中注册
var RootCmd = &cobra.Command{
	Use:           "geo-inspect",
	Short:         "检查智能体轨迹 GeoJSON 文件",
	Long:          "流式读取一次 GeoJSON 要素集合，输出时间步、有效坐标与拒绝原因统计。",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "GeoJSON 路径（默认 $GEOJSON_PATH 或 "+DefaultPath+"）")
	RootCmd.PersistentFlags().StringVar(&formatFlag, "format", "text", "输出格式：json 或 text")
}

// 文档注释：在给定上下文中执行命令
// 背景：入口传入信号上下文，中断时导入在下一次检查点返回 context 错误，不输出部分结果。
// 约束：cobra 只在子命令 ctx 为空时继承父命令的 ctx，这里逐个覆盖，保证每次执行使用本次传入的上下文。
func Execute(ctx context.Context) error {
	for _, c := range RootCmd.Commands() {
		c.SetContext(ctx)
	}
	return RootCmd.ExecuteContext(ctx)
}

func getPath() string {
	if filePath != "" {
		return filePath
	}
	if env := os.Getenv("GEOJSON_PATH"); env != "" {
		return env
	}
	return DefaultPath
}

func load(ctx context.Context) (*ingest.Result, error) {
	return ingest.File(ctx, getPath(), ingest.Options{Logger: logger.L()})
}

func jsonOutput() bool { return formatFlag == "json" }

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
