package response

import (
	"time"

	"mikvah-scheduler/internal/usecase/commands"
)

type PreviewDayResponse struct {
	Date    string  `json:"date"`
	Rule    string  `json:"rule,omitempty"`
	Closed  bool    `json:"closed"`
	Opening *string `json:"opening,omitempty"`
	Closing *string `json:"closing,omitempty"`
	Error   *string `json:"error,omitempty"`
}

type WeekPreviewResponse struct {
	Sunday  string                `json:"sunday"`
	Days    []*PreviewDayResponse `json:"days"`
	Skipped []string              `json:"skipped"`
}

func FromWeekPlan(p commands.WeekPlan) *WeekPreviewResponse {
	res := &WeekPreviewResponse{
		Sunday:  p.Sunday.Format(time.DateOnly),
		Days:    make([]*PreviewDayResponse, 0, len(p.Days)),
		Skipped: make([]string, 0, len(p.Skipped)),
	}
	for _, d := range p.Days {
		day := &PreviewDayResponse{Date: d.Date.Format(time.DateOnly), Rule: d.Rule}
		if d.Err != nil {
			msg := d.Err.Error()
			day.Error = &msg
		}
		if d.Hours != nil {
			day.Closed = d.Hours.IsClosed()
			if o, ok := d.Hours.Opening(); ok {
				s := o.String()
				day.Opening = &s
			}
			if c, ok := d.Hours.Closing(); ok {
				s := c.String()
				day.Closing = &s
			}
		}
		res.Days = append(res.Days, day)
	}
	for _, s := range p.Skipped {
		res.Skipped = append(res.Skipped, s.Format(time.DateOnly))
	}
	return res
}
