package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"casitas/internal/dto"
	"casitas/internal/infra"
	"casitas/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// colaMemoria is an in-process Cola with LPUSH/RPOP semantics.
type colaMemoria struct {
	mu     sync.Mutex
	listas map[string][][]byte
}

func nuevaColaMemoria() *colaMemoria {
	return &colaMemoria{listas: map[string][][]byte{}}
}

func (c *colaMemoria) Push(_ context.Context, queue string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listas[queue] = append([][]byte{data}, c.listas[queue]...)
	return nil
}

func (c *colaMemoria) Pop(ctx context.Context, timeout time.Duration, queues ...string) (string, []byte, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, q := range queues {
			if l := c.listas[q]; len(l) > 0 {
				item := l[len(l)-1]
				c.listas[q] = l[:len(l)-1]
				c.mu.Unlock()
				return q, item, nil
			}
		}
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
	return "", nil, redis.Nil
}

func (c *colaMemoria) len(queue string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listas[queue])
}

func (c *colaMemoria) pop(t *testing.T, queue string) []byte {
	t.Helper()
	_, data, err := c.Pop(context.Background(), 10*time.Millisecond, queue)
	require.NoError(t, err)
	return data
}

type senderFalso struct {
	mu       sync.Mutex
	err      error
	enviados []EmailJobPayload
}

func (s *senderFalso) Send(to []string, subject, body, adjunto string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.enviados = append(s.enviados, EmailJobPayload{To: to, Subject: subject, Body: body, AdjuntoPath: adjunto})
	return nil
}

func (s *senderFalso) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.enviados)
}

func TestDispatcher_EnviarEncolaEmail(t *testing.T) {
	cola := nuevaColaMemoria()
	d := NewDispatcher(cola)

	err := d.Enviar(context.Background(), service.Notificacion{
		Destinatarios: []string{"ana@example.com"},
		Asunto:        "Gasto común 05/2026",
		Cuerpo:        "Adjuntamos...",
		AdjuntoPath:   "/tmp/gasto.pdf",
	})
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal(cola.pop(t, QueueEmail), &job))
	assert.Equal(t, JobEmail, job.Type)
	assert.Zero(t, job.Intentos)

	var p EmailJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, []string{"ana@example.com"}, p.To)
	assert.Equal(t, "/tmp/gasto.pdf", p.AdjuntoPath)
}

func TestPool_ProcesaEmail(t *testing.T) {
	cola := nuevaColaMemoria()
	sender := &senderFalso{}
	pool := NewPool(cola, map[string]Handler{
		JobEmail: NewEmailWorker(sender, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))),
	})
	require.NoError(t, NewDispatcher(cola).EnqueueEmail(context.Background(), EmailJobPayload{
		To: []string{"a@example.com"}, Subject: "hola",
	}))

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 2)
	assert.Eventually(t, func() bool { return sender.total() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	pool.Wait()
	assert.Zero(t, cola.len(DLQPrefix+QueueEmail))
}

func TestPool_ReintentaYLuegoDLQ(t *testing.T) {
	cola := nuevaColaMemoria()
	sender := &senderFalso{err: errors.New("smtp: 421 try later")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Nombre: "smtp", FailureThreshold: 10})
	pool := NewPool(cola, map[string]Handler{JobEmail: NewEmailWorker(sender, cb)})
	ctx := context.Background()
	require.NoError(t, NewDispatcher(cola).EnqueueEmail(ctx, EmailJobPayload{To: []string{"a@example.com"}}))

	for i := 1; i < MaxIntentos; i++ {
		pool.procesar(ctx, QueueEmail, cola.pop(t, QueueEmail))
		require.Equal(t, 1, cola.len(QueueEmail), "attempt %d requeued", i)
	}
	pool.procesar(ctx, QueueEmail, cola.pop(t, QueueEmail))
	assert.Zero(t, cola.len(QueueEmail))

	var entry DLQEntry
	require.NoError(t, json.Unmarshal(cola.pop(t, DLQPrefix+QueueEmail), &entry))
	assert.Equal(t, QueueEmail, entry.OriginalQueue)
	assert.Equal(t, JobEmail, entry.JobType)
	assert.Equal(t, MaxIntentos, entry.Attempts)
	assert.Contains(t, entry.Reason, "421")
}

func TestPool_PayloadInvalidoVaDirectoADLQ(t *testing.T) {
	cola := nuevaColaMemoria()
	pool := NewPool(cola, map[string]Handler{
		JobEmail: NewEmailWorker(&senderFalso{}, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))),
	})
	ctx := context.Background()

	job, _ := json.Marshal(Job{Type: JobEmail, Payload: json.RawMessage(`"no es un objeto"`)})
	pool.procesar(ctx, QueueEmail, job)
	pool.procesar(ctx, QueueEmail, []byte("{basura"))
	desconocido, _ := json.Marshal(Job{Type: "fax", Payload: json.RawMessage(`{}`)})
	pool.procesar(ctx, QueueEmail, desconocido)

	assert.Zero(t, cola.len(QueueEmail))
	assert.Equal(t, 3, cola.len(DLQPrefix+QueueEmail))
}

func TestEmailWorker_BreakerAbierto(t *testing.T) {
	sender := &senderFalso{err: errors.New("connection refused")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Nombre: "smtp", FailureThreshold: 1})
	w := NewEmailWorker(sender, cb)
	raw, _ := json.Marshal(EmailJobPayload{To: []string{"a@example.com"}})

	assert.Error(t, w.Process(context.Background(), raw))
	sender.err = nil
	err := w.Process(context.Background(), raw)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Zero(t, sender.total())
}

type morosidadFalsa struct {
	mu     sync.Mutex
	fechas []time.Time
}

func (m *morosidadFalsa) ProcesarAtrasos(_ context.Context, hoy time.Time) (*dto.ProcesarAtrasosResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fechas = append(m.fechas, hoy)
	return &dto.ProcesarAtrasosResponse{Fecha: hoy.Format("2006-01-02")}, nil
}

func (m *morosidadFalsa) llamadas() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fechas)
}

func TestMorosidadCron_CorreAlIniciarYPorTick(t *testing.T) {
	svc := &morosidadFalsa{}
	cron := NewMorosidadCron(svc, 20*time.Millisecond)
	fijo := time.Date(2026, 6, 6, 3, 0, 0, 0, time.UTC)
	cron.now = func() time.Time { return fijo }

	ctx, cancel := context.WithCancel(context.Background())
	cron.Start(ctx)
	assert.Eventually(t, func() bool { return svc.llamadas() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	cron.Wait()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, fijo, svc.fechas[0])
}
