package schedule

import "time"

// JobScraper is the only scheduled job today: the full scrape cycle.
const JobScraper = "scraper"

type Schedule struct {
	JobName        string
	CronExpression string
	UpdatedAt      time.Time
}
