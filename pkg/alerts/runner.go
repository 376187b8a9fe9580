package alerts

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCron schedules periodic scans with the given cron spec (for example
// "0 * * * *" for hourly). The returned cron can be stopped on shutdown.
func (nt *Notifier) StartCron(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := nt.Scan(time.Now()); err != nil {
			log.Printf("Alert scan failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("Alert scan scheduled with %q", spec)
	return c, nil
}
