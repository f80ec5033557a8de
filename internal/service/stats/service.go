package stats

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/model"
)

// TaskStatsReq 目标完成度查询。period缺省按month。
type TaskStatsReq struct {
	Year   int    `form:"year"`
	Month  int    `form:"month"`
	Week   int    `form:"week"`
	Period string `form:"period"`
}

// Targets 四类目标值
type Targets struct {
	ConsultTarget  int `json:"consultTarget"`
	FollowUpTarget int `json:"followUpTarget"`
	DevelopTarget  int `json:"developTarget"`
	RegisterTarget int `json:"registerTarget"`
}

// Completions 窗口内按当前状态分桶的完成数
type Completions struct {
	ConsultCount  int64 `json:"consultCount"`
	FollowUpCount int64 `json:"followUpCount"`
	DevelopCount  int64 `json:"developCount"`
	RegisterCount int64 `json:"registerCount"`
}

// Progress 完成百分比，目标为0时恒为0
type Progress struct {
	ConsultProgress  int `json:"consultProgress"`
	FollowUpProgress int `json:"followUpProgress"`
	DevelopProgress  int `json:"developProgress"`
	RegisterProgress int `json:"registerProgress"`
}

// PeriodWindow 解析后的窗口边界（RFC3339）
type PeriodWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type TaskStatsResp struct {
	Period      string       `json:"period"`
	Year        int          `json:"year"`
	Month       int          `json:"month,omitempty"`
	Week        int          `json:"week,omitempty"`
	Targets     Targets      `json:"targets"`
	Completions Completions  `json:"completions"`
	Progress    Progress     `json:"progress"`
	Window      PeriodWindow `json:"window"`
}

// PerformanceReq 业绩看板查询。timeRange=week时取当前周，
// timeRange=month时取 year+month 指定的自然月。
type PerformanceReq struct {
	TimeRange string `form:"timeRange"`
	UserID    uint64 `form:"userId"`
	Year      int    `form:"year"`
	Month     int    `form:"month"`
}

type PerformanceResp struct {
	UserID       uint64           `json:"userId"`
	TimeRange    string           `json:"timeRange"`
	StatusCounts map[string]int64 `json:"statusCounts"`
	Total        int64            `json:"total"`
	Window       PeriodWindow     `json:"window"`
}

type service struct {
	store Store
	log   *logrus.Entry
	now   func() time.Time
}

func NewService(store Store, l *logrus.Logger) Service {
	return &service{
		store: store,
		log:   l.WithField("service", "stats"),
		now:   time.Now,
	}
}

// UserTaskStats 周期目标完成度。查询出错不抛500：看板可用性优先，
// 记日志后降级为全零响应。
func (s *service) UserTaskStats(ctx context.Context, userID uint64, req *TaskStatsReq) (*TaskStatsResp, error) {
	period := req.Period
	if period == "" {
		period = model.TargetTypeMonth
	}
	if period != model.TargetTypeMonth && period != model.TargetTypeWeek {
		return nil, errs.Newf(errs.KindValidation, "invalid period: %s", period)
	}

	now := s.now()
	year := req.Year
	if year == 0 {
		year = now.Year()
	}

	var (
		w      Window
		number int
		err    error
	)
	if period == model.TargetTypeWeek {
		number = req.Week
		if number == 0 {
			_, number = WeekOf(now)
		}
		w, err = WeekWindow(year, number)
	} else {
		number = req.Month
		if number == 0 {
			number = int(now.Month())
		}
		w, err = MonthWindow(year, number)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, "invalid period parameters", err)
	}

	resp := &TaskStatsResp{Period: period, Year: year}
	if period == model.TargetTypeWeek {
		resp.Week = number
	} else {
		resp.Month = number
	}
	resp.Window.Start, resp.Window.End = w.ISO()

	target, err := s.store.ActiveTarget(ctx, userID, year, period, number)
	if err != nil {
		s.log.Errorf("target lookup failed, user: %d, error: %v", userID, err)
		return resp, nil
	}
	if target != nil {
		resp.Targets = Targets{
			ConsultTarget:  target.ConsultTarget,
			FollowUpTarget: target.FollowUpTarget,
			DevelopTarget:  target.DevelopTarget,
			RegisterTarget: target.RegisterTarget,
		}
	}

	counts, err := s.store.StatusCounts(ctx, userID, w)
	if err != nil {
		s.log.Errorf("status counting failed, user: %d, error: %v", userID, err)
		return resp, nil
	}
	resp.Completions = Completions{
		ConsultCount:  counts[model.CustomerStatusConsult],
		FollowUpCount: counts[model.CustomerStatusEffectiveVisit],
		DevelopCount:  counts[model.CustomerStatusNewDevelop],
		RegisterCount: counts[model.CustomerStatusRegistered],
	}
	resp.Progress = Progress{
		ConsultProgress:  progressOf(resp.Completions.ConsultCount, resp.Targets.ConsultTarget),
		FollowUpProgress: progressOf(resp.Completions.FollowUpCount, resp.Targets.FollowUpTarget),
		DevelopProgress:  progressOf(resp.Completions.DevelopCount, resp.Targets.DevelopTarget),
		RegisterProgress: progressOf(resp.Completions.RegisterCount, resp.Targets.RegisterTarget),
	}
	return resp, nil
}

// EmployeePerformance 员工业绩：窗口内全部状态的计数，未出现的状态补零
func (s *service) EmployeePerformance(ctx context.Context, req *PerformanceReq) (*PerformanceResp, error) {
	if req.UserID == 0 {
		return nil, errs.New(errs.KindValidation, "userId is required")
	}

	timeRange := req.TimeRange
	if timeRange == "" {
		timeRange = model.TargetTypeMonth
	}

	now := s.now()
	var (
		w   Window
		err error
	)
	switch timeRange {
	case model.TargetTypeWeek:
		year, week := WeekOf(now)
		w, err = WeekWindow(year, week)
	case model.TargetTypeMonth:
		year := req.Year
		if year == 0 {
			year = now.Year()
		}
		month := req.Month
		if month == 0 {
			month = int(now.Month())
		}
		w, err = MonthWindow(year, month)
	default:
		return nil, errs.Newf(errs.KindValidation, "invalid timeRange: %s", timeRange)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, "invalid period parameters", err)
	}

	resp := &PerformanceResp{
		UserID:       req.UserID,
		TimeRange:    timeRange,
		StatusCounts: make(map[string]int64, len(model.CustomerStatuses)),
	}
	resp.Window.Start, resp.Window.End = w.ISO()
	for _, status := range model.CustomerStatuses {
		resp.StatusCounts[status] = 0
	}

	counts, err := s.store.StatusCounts(ctx, req.UserID, w)
	if err != nil {
		s.log.Errorf("status counting failed, user: %d, error: %v", req.UserID, err)
		return resp, nil
	}
	for status, cnt := range counts {
		resp.StatusCounts[status] = cnt
		resp.Total += cnt
	}
	return resp, nil
}

// progressOf 完成百分比。目标为0或缺失恒为0，不产生除零/NaN。
func progressOf(done int64, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(target) * 100))
}
