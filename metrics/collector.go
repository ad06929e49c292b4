package metrics

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemMetric 健康检查用的系统/进程指标。
type SystemMetric struct {
	CPULoad        float64 `json:"cpu_load"`
	CPUProcessors  int     `json:"cpu_processors"`
	DiskTotalGB    float64 `json:"disk_total_gb"`
	DiskUsedGB     float64 `json:"disk_used_gb"`
	DiskUsageRatio float64 `json:"disk_usage"`
	ProcMaxMemory  float64 `json:"proc_max_memory_gb"`
	ProcUsedMemory float64 `json:"proc_used_memory_gb"`
	ProcMemUsage   float64 `json:"proc_mem_usage"`
	Score          float64 `json:"score"`
}

// CollectSystemMetric 采集系统/进程指标供 /health 输出。
// 单项采集失败不致命，对应字段保持零值。
func CollectSystemMetric(ctx context.Context) SystemMetric {
	var out SystemMetric
	if avg, err := load.AvgWithContext(ctx); err == nil {
		out.CPULoad = avg.Load1
	}
	out.CPUProcessors = runtime.NumCPU()
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil && du.Total > 0 {
		out.DiskTotalGB = float64(du.Total) / (1024 * 1024 * 1024)
		out.DiskUsedGB = float64(du.Used) / (1024 * 1024 * 1024)
		out.DiskUsageRatio = du.UsedPercent / 100.0
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		out.ProcMaxMemory = float64(vm.Total) / (1024 * 1024 * 1024)
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if pm, err := p.MemoryInfoWithContext(ctx); err == nil && pm != nil {
			usedGB := float64(pm.RSS) / (1024 * 1024 * 1024)
			out.ProcUsedMemory = usedGB
			if out.ProcMaxMemory > 0 {
				out.ProcMemUsage = usedGB / out.ProcMaxMemory
			}
		}
	}
	// 简单打分：负载、磁盘与内存占用按权重折减
	score := 100.0
	if out.CPULoad > 0 {
		score -= out.CPULoad * 5
	}
	if out.DiskUsageRatio > 0 {
		score -= out.DiskUsageRatio * 20
	}
	if out.ProcMemUsage > 0 {
		score -= out.ProcMemUsage * 30
	}
	if score < 0 {
		score = 0
	}
	out.Score = score
	return out
}
