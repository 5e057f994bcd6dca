package api

import (
	"github.com/goncharom/yomu/app/config"
	"github.com/goncharom/yomu/app/database"
	"github.com/goncharom/yomu/app/newsletter"
	"github.com/goncharom/yomu/app/schedule"
)

// Handler serves the daemon's observational endpoints.
type Handler struct {
	config      *config.Config
	schedules   *schedule.Set
	runs        database.RunRepository
	coordinator *newsletter.Coordinator
}
