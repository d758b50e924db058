package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	tperrors "github.com/vnykmshr/tempo/pkg/common/errors"
	"github.com/vnykmshr/tempo/pkg/common/validation"
)

// cronParser accepts six-field expressions with a seconds column as well as
// descriptors like @hourly and @every 5m.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseCron validates a cron expression without scheduling anything.
func ParseCron(spec string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, tperrors.NewValidationError("scheduler", "spec", spec, err.Error()).
			WithHint("use six fields (seconds first) or a descriptor like @hourly")
	}
	return sched, nil
}

func (s *scheduler) ScheduleCron(task Task, spec string) (*Handle, error) {
	if err := validation.ValidateNotNil("scheduler", "task", task); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("scheduler", "spec", spec); err != nil {
		return nil, err
	}
	sched, err := ParseCron(spec)
	if err != nil {
		return nil, err
	}
	first := sched.Next(time.Now().In(s.cfg.Location))
	return s.submit(taskCallable{task}, first, 0, sched)
}
