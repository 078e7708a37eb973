package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"viaggi/internal/amqp"
	"viaggi/internal/store"
)

// ScanConsumer delivers receipt scan jobs to a handler until the context
// ends. Satisfied by *amqp.Client.
type ScanConsumer interface {
	ConsumeReceiptScans(ctx context.Context, handler func(*amqp.ReceiptScanMessage) error) error
}

// ScanProcessor runs on the worker and turns queued scan jobs into verified
// expenses.
type ScanProcessor struct {
	consumer ScanConsumer
	expenses *ExpenseService

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScanProcessor(consumer ScanConsumer, expenses *ExpenseService) *ScanProcessor {
	return &ScanProcessor{
		consumer: consumer,
		expenses: expenses,
	}
}

// Start begins consuming in the background. Returns an error if already
// running.
func (p *ScanProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("scan processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Scan processor started")
	return nil
}

// Stop signals the consume loop to end and waits for it or the context.
func (p *ScanProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Scan processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scan processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently consuming.
func (p *ScanProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ScanProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-loopCtx.Done():
		}
	}()

	err := p.consumer.ConsumeReceiptScans(loopCtx, p.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Scan consumer exited", "error", err)
	}
}

// Handle processes one scan job. A missing expense is dropped rather than
// requeued forever; anything else comes back as an error so the delivery is
// retried.
func (p *ScanProcessor) Handle(msg *amqp.ReceiptScanMessage) error {
	ctx := context.Background()

	_, err := p.expenses.ScanExpense(ctx, msg.ExpenseID)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNoReceipt) {
		slog.WarnContext(ctx, "Scan job cannot be fulfilled, dropping",
			"expense_id", msg.ExpenseID, "reason", err)
		return nil
	}
	return err
}
