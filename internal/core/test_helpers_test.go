package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"nurserycore/pkg/domain"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *captureLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

// stepClock advances by a fixed step on every read.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// blockingRule blocks every change with the given action.
type blockingRule struct {
	action domain.Action
}

func (r blockingRule) Name() string { return "blocking_" + string(r.action) }

func (r blockingRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, c := range changes {
		if c.Action == r.action {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s blocked", c.Action),
				EntityID: c.Target,
			})
		}
	}
	return res, nil
}

func mustAddPlant(t *testing.T, svc *Service, species string, parent domain.ID) domain.ID {
	t.Helper()
	id, err := svc.AddPlant(context.Background(), species, parent)
	if err != nil {
		t.Fatalf("add %s: %v", species, err)
	}
	return id
}

func mustAddGroup(t *testing.T, svc *Service, name string, owns bool, parent domain.ID) domain.ID {
	t.Helper()
	id, err := svc.AddGroup(context.Background(), name, owns, parent)
	if err != nil {
		t.Fatalf("add group %s: %v", name, err)
	}
	return id
}

// plantOf looks a plant up under the service lock.
func plantOf(t *testing.T, svc *Service, id domain.ID) *domain.Plant {
	t.Helper()
	var p *domain.Plant
	svc.View(func(inv *domain.Inventory) {
		c, ok := inv.Find(id)
		if !ok {
			return
		}
		p, _ = domain.AsPlant(c)
	})
	if p == nil {
		t.Fatalf("expected plant %s in inventory", id)
	}
	return p
}

func setStage(t *testing.T, svc *Service, id domain.ID, stage domain.Stage) {
	t.Helper()
	state, ok := domain.NewLifecycleState(stage)
	if !ok {
		t.Fatalf("unknown stage %s", stage)
	}
	svc.View(func(inv *domain.Inventory) {
		c, _ := inv.Find(id)
		if p, ok := domain.AsPlant(c); ok {
			p.SetState(state)
		}
	})
}
