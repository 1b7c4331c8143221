package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher führt Fire-and-Forget-Aufgaben (Mails, Open-Access-Lookup) nach einem
// bereits gespeicherten Zustandsübergang aus. Fehler werden geloggt und verworfen,
// der Aufrufer wartet nie darauf.
type Dispatcher struct {
	Logger  *zap.Logger
	Timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher erstellt einen Dispatcher mit Timeout pro Aufgabe.
func NewDispatcher(logger *zap.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{Logger: logger, Timeout: timeout}
}

// Go startet task in einer eigenen Goroutine mit frischem Context.
func (d *Dispatcher) Go(name string, task func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				backgroundTaskFailures.WithLabelValues(name).Inc()
				d.Logger.Error("Hintergrundaufgabe abgestürzt", zap.String("task", name), zap.Error(fmt.Errorf("panic: %v", r)))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()
		if err := task(ctx); err != nil {
			backgroundTaskFailures.WithLabelValues(name).Inc()
			d.Logger.Error("Hintergrundaufgabe fehlgeschlagen", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Wait blockiert, bis alle gestarteten Aufgaben beendet sind (Shutdown, Tests).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
