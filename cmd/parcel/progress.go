package main

import (
	"io"
	"math"

	"github.com/schollz/progressbar/v3"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// progressBarEmitter renders compression-progress events as a terminal bar.
// All other events are dropped; one-shot CLI commands have no UI to feed.
type progressBarEmitter struct {
	bar *progressbar.ProgressBar
}

func newProgressBarEmitter(w io.Writer) *progressBarEmitter {
	return &progressBarEmitter{
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("working"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Emit implements domain.Emitter.
func (e *progressBarEmitter) Emit(event string, payload any) error {
	if event != domain.EventCompressionProgress {
		return nil
	}
	update, ok := payload.(domain.ProgressUpdate)
	if !ok {
		return nil
	}

	e.bar.Describe(update.CurrentFile)
	_ = e.bar.Set(int(math.Round(update.Progress)))
	if update.Progress >= 100 {
		_ = e.bar.Finish()
	}
	return nil
}

// Ensure progressBarEmitter implements domain.Emitter.
var _ domain.Emitter = (*progressBarEmitter)(nil)
