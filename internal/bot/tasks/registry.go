package tasks

// RegisterAllTasks initializes and returns a map of all registered scheduled
// tasks. The keys match the task names in the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["quota_reset"] = newQuotaResetTask(deps)
	tasks["expiry_sweep"] = newExpirySweepTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
