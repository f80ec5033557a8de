package stats

import (
	"fmt"
	"time"
)

// Window 周期窗口，Start/End均为含端点的本地时间
type Window struct {
	Start time.Time
	End   time.Time
}

// ISO RFC3339格式的窗口边界，给前端展示用
func (w Window) ISO() (string, string) {
	return w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339)
}

// Contains t是否落在窗口内
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MonthWindow 自然月窗口：首日零点到末日最后一毫秒
func MonthWindow(year, month int) (Window, error) {
	if year < 1 || month < 1 || month > 12 {
		return Window{}, fmt.Errorf("invalid month period: year=%d month=%d", year, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Window{Start: start, End: end}, nil
}

// WeekWindow 周窗口，周一到周日。第1周从1月1日当天或之后的第一个周一起算。
// 注意这不是ISO-8601周编号，年初落在首个周一之前的天归上一年计——口径沿用已久，
// 前端展示按同一口径解释，不要换成标准ISO周。
func WeekWindow(year, week int) (Window, error) {
	if year < 1 || week < 1 || week > 53 {
		return Window{}, fmt.Errorf("invalid week period: year=%d week=%d", year, week)
	}
	start := firstMonday(year).AddDate(0, 0, (week-1)*7)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return Window{Start: start, End: end}, nil
}

// WeekOf 求t按本口径属于哪一年第几周。首个周一之前的日子归上一年
func WeekOf(t time.Time) (year, week int) {
	year = t.Year()
	fm := firstMonday(year)
	if t.Before(fm) {
		year--
		fm = firstMonday(year)
	}
	week = int(t.Sub(fm)/(7*24*time.Hour)) + 1
	return year, week
}

// firstMonday 当年1月1日当天或之后的第一个周一
func firstMonday(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	offset := (8 - int(jan1.Weekday())) % 7
	return jan1.AddDate(0, 0, offset)
}
