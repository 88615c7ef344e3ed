package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"casitas/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobEmail = "email"

	// MaxIntentos is how many times a job runs before it goes to the DLQ.
	MaxIntentos = 3

	popTimeout = 5 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Cola is the list-based queue the pool consumes. RedisCola is the production
// implementation.
type Cola interface {
	Push(ctx context.Context, queue string, data []byte) error
	// Pop blocks up to timeout; it returns redis.Nil when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration, queues ...string) (queue string, data []byte, err error)
}

// RedisCola implements Cola with LPUSH/BRPOP, so jobs are consumed FIFO.
type RedisCola struct{ rdb *redis.Client }

func NewRedisCola(rdb *redis.Client) *RedisCola { return &RedisCola{rdb: rdb} }

func (c *RedisCola) Push(ctx context.Context, queue string, data []byte) error {
	return c.rdb.LPush(ctx, queue, data).Err()
}

func (c *RedisCola) Pop(ctx context.Context, timeout time.Duration, queues ...string) (string, []byte, error) {
	res, err := c.rdb.BRPop(ctx, timeout, queues...).Result()
	if err != nil {
		return "", nil, err
	}
	if len(res) < 2 {
		return "", nil, redis.Nil
	}
	return res[0], []byte(res[1]), nil
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// ── Dispatcher ────────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs. It is the service.Notificador of the
// running server: notifications become email jobs.
type Dispatcher struct {
	cola Cola
}

func NewDispatcher(cola Cola) *Dispatcher {
	return &Dispatcher{cola: cola}
}

var _ service.Notificador = (*Dispatcher)(nil)

// Enviar queues the notification as an email job.
func (d *Dispatcher) Enviar(ctx context.Context, n service.Notificacion) error {
	return d.EnqueueEmail(ctx, EmailJobPayload{
		To:          n.Destinatarios,
		Subject:     n.Asunto,
		Body:        n.Cuerpo,
		AdjuntoPath: n.AdjuntoPath,
	})
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	if err := d.cola.Push(ctx, queue, encoded); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

// ── Pool ──────────────────────────────────────────────────────────────────────

// Pool runs workers that pop jobs and route them to handlers by Job.Type.
type Pool struct {
	cola     Cola
	handlers map[string]Handler
	queues   []string
	wg       sync.WaitGroup
}

func NewPool(cola Cola, handlers map[string]Handler) *Pool {
	return &Pool{cola: cola, handlers: handlers, queues: []string{QueueEmail}}
}

// Start launches numWorkers goroutines. They exit when ctx is cancelled;
// Wait blocks until all have returned.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		queue, raw, err := p.cola.Pop(ctx, popTimeout, p.queues...)
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: pop failed")
				sleepCtx(ctx, time.Second)
			}
			continue
		}
		p.procesar(ctx, queue, raw)
	}
}

// procesar runs one job. A failed job is pushed back with one more attempt
// until MaxIntentos, then moved to the DLQ.
func (p *Pool) procesar(ctx context.Context, queue string, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: invalid job envelope")
		SendToDLQ(ctx, p.cola, queue, "", raw, "invalid envelope: "+err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.cola, queue, job.Type, job.Payload, "no handler for job type", job.Intentos)
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	job.Intentos++
	if job.Intentos >= MaxIntentos || errors.Is(err, ErrPermanente) {
		SendToDLQ(ctx, p.cola, queue, job.Type, job.Payload, err.Error(), job.Intentos)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intentos", job.Intentos).Msg("worker: job failed, requeued")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("worker: marshal requeue")
		return
	}
	if pErr := p.cola.Push(ctx, queue, encoded); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("worker: requeue failed")
	}
}

// ErrPermanente marks a job failure that retrying cannot fix.
var ErrPermanente = errors.New("permanent job failure")

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
