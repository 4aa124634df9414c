package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job name for generation runs.
const DefaultJob = "chilly_generate"

// Pusher sends the run collectors to a Prometheus Pushgateway. The
// generate command exits right after a run, so its series are pushed
// rather than scraped.
type Pusher struct {
	pusher *push.Pusher
}

func NewPusher(url, job string) *Pusher {
	return &Pusher{
		pusher: push.New(url, job).
			Collector(RunsTotal).
			Collector(RunDuration).
			Collector(Conversations).
			Collector(SinkErrorsTotal),
	}
}

// Push replaces the job's metric group on the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
