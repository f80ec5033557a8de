package stats

import (
	"context"

	"github.com/canxing/crm-admin/pkg/model"
)

// Service 统计聚合：周期目标完成度与员工业绩看板
type Service interface {
	UserTaskStats(ctx context.Context, userID uint64, req *TaskStatsReq) (*TaskStatsResp, error)
	EmployeePerformance(ctx context.Context, req *PerformanceReq) (*PerformanceResp, error)
}

// Store 统计读侧查询
type Store interface {
	// ActiveTarget 指定员工/年份/周期的有效目标，没有返回 (nil, nil)
	ActiveTarget(ctx context.Context, userID uint64, year int, targetType string, number int) (*model.EmployeeTarget, error)
	// StatusCounts 员工名下 updatedAt 落窗客户按当前状态的计数
	StatusCounts(ctx context.Context, userID uint64, w Window) (map[string]int64, error)
}
