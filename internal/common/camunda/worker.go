package camunda

import (
	"sync"
	"time"

	"bailey-assistant/internal/common/config"
	"bailey-assistant/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is the handler shape every assistant worker exposes.
type JobHandler func(client worker.JobClient, job entities.Job)

// WorkerSet tracks opened job workers so they can be closed together.
type WorkerSet struct {
	client zbc.Client
	log    logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerSet(client zbc.Client, log logger.Logger) *WorkerSet {
	return &WorkerSet{client: client, log: log, workers: make(map[string]worker.JobWorker)}
}

// Start opens a job worker for taskType unless the config disables it.
func (s *WorkerSet) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		s.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jw := s.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	s.mu.Lock()
	s.workers[taskType] = jw
	s.mu.Unlock()

	s.log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Close stops all workers and waits for in-flight jobs.
func (s *WorkerSet) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for taskType, jw := range s.workers {
		jw.Close()
		jw.AwaitClose()
		s.log.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	s.workers = make(map[string]worker.JobWorker)
}
