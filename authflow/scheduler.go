package authflow

import "time"

// Timer is a pending scheduled call. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to a Scheduler
type SchedulerFunc func(d time.Duration, f func()) Timer

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}

// RealScheduler schedules with time.AfterFunc
func RealScheduler() Scheduler {
	return SchedulerFunc(func(d time.Duration, f func()) Timer {
		return time.AfterFunc(d, f)
	})
}
