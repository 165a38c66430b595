package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Job struct {
	Name string
	F    func(ctx context.Context) error
}

var (
	mu   sync.Mutex
	jobs []*Job
)

func Register(j *Job) {
	mu.Lock()
	defer mu.Unlock()
	jobs = append(jobs, j)
}

// CleanUp runs registered jobs in reverse registration order, each bounded by timeout.
// Jobs are dropped after running.
func CleanUp(timeout time.Duration) {
	mu.Lock()
	pending := jobs
	jobs = nil
	mu.Unlock()
	for i := len(pending) - 1; i >= 0; i-- {
		j := pending[i]
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := j.F(ctx)
		cancel()
		if err != nil {
			slog.Error("cleanup job failed", slog.String("job", j.Name), slog.String("error", err.Error()))
			continue
		}
		slog.Info("cleanup job done", slog.String("job", j.Name))
	}
}
