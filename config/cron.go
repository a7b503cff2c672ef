package config

import (
	"posbridge.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"catalogsyncjob": {Schedule: "*/15 * * * *", Job: jobs.CatalogSyncJob},
	// Add more jobs here
}
