package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
)

const recorderBuffer = 256

// Recorder turns the credit movements of a session into ledger transactions.
//
// Observe runs on the session goroutine, so it only queues; Run writes.
// When the queue is full the movement is dropped and logged.
type Recorder struct {
	mediator common.Mediator
	slot     string
	logger   *zap.Logger
	queue    chan game.CreditMovement
}

// NewRecorder creates a recorder writing to the given save slot through the mediator
func NewRecorder(mediator common.Mediator, slot string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		mediator: mediator,
		slot:     slot,
		logger:   logger.Named("ledger"),
		queue:    make(chan game.CreditMovement, recorderBuffer),
	}
}

// Observe queues the movements of a change
func (r *Recorder) Observe(change game.Change) {
	for _, mv := range change.Movements {
		select {
		case r.queue <- mv:
		default:
			r.logger.Warn("ledger queue full, movement dropped",
				zap.String("type", mv.Type.String()),
				zap.Int64("tick", mv.Tick),
				zap.Int("amount", mv.Amount),
			)
		}
	}
}

// Run writes queued movements until ctx is cancelled, then flushes what is left.
// Writes never observe the cancellation so a movement taken off the queue is not lost.
func (r *Recorder) Run(ctx context.Context) error {
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case mv := <-r.queue:
			r.record(writeCtx, mv)
		case <-ctx.Done():
			r.flush(writeCtx)
			return nil
		}
	}
}

func (r *Recorder) flush(ctx context.Context) {
	for {
		select {
		case mv := <-r.queue:
			r.record(ctx, mv)
		default:
			return
		}
	}
}

func (r *Recorder) record(ctx context.Context, mv game.CreditMovement) {
	_, err := r.mediator.Send(ctx, &RecordTransactionCommand{
		Slot:            r.slot,
		Tick:            mv.Tick,
		TransactionType: mv.Type.String(),
		Amount:          mv.Amount,
		BalanceBefore:   mv.BalanceBefore,
		BalanceAfter:    mv.BalanceAfter,
		Description:     mv.Description,
		RelatedEntityID: mv.RelatedID,
	})
	if err != nil {
		r.logger.Error("failed to record transaction", zap.String("type", mv.Type.String()), zap.Error(err))
	}
}
