package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectDatasetGenerated is the NATS subject announcing a finished dataset run,
// consumed by the training job.
const SubjectDatasetGenerated = "chilly.dataset.generated"

// DatasetGenerated is emitted once both dataset files are on disk.
type DatasetGenerated struct {
	RunID      string    `json:"run_id"`
	InputDir   string    `json:"input_dir"`
	Profile    string    `json:"profile"`
	TrainFile  string    `json:"train_file"`
	ValFile    string    `json:"val_file"`
	Survivors  int       `json:"survivors"`
	Train      int       `json:"train"`
	Val        int       `json:"val"`
	FinishedAt time.Time `json:"finished_at"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("chilly"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// PublishDatasetGenerated publishes evt and waits for the server to
// acknowledge the flush, so a short-lived CLI run does not lose it.
func (c *Client) PublishDatasetGenerated(ctx context.Context, evt DatasetGenerated) error {
	if err := c.Publish(SubjectDatasetGenerated, evt); err != nil {
		return err
	}
	if err := c.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	c.logger.Info("dataset event published", "subject", SubjectDatasetGenerated, "run_id", evt.RunID)
	return nil
}

func (c *Client) Close() {
	c.conn.Close()
}
