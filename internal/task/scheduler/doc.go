// Package scheduler triggers named jobs on cron or interval schedules.
//
// Schedules are strings parsed by ParseSchedule. Execution is delegated to
// robfig/cron with panic recovery and skip-if-still-running, so a slow page
// check never overlaps the next one.
package scheduler
