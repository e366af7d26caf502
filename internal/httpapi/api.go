package httpapi

import (
	"seiyo-exam/internal/analytics"
	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/logger"
)

type API struct {
	exams      *exam.Service
	analytics  *analytics.Service
	adminToken string
	log        *logger.Logger
}

func NewAPI(exams *exam.Service, reports *analytics.Service, adminToken string, log *logger.Logger) *API {
	if log == nil {
		log = logger.Nop()
	}
	return &API{
		exams:      exams,
		analytics:  reports,
		adminToken: adminToken,
		log:        log,
	}
}
