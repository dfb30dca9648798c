package crawler

import (
	"time"

	"sjsage522/contestharvester/logger"

	"github.com/google/uuid"
)

// SourceHarvester runs one Walker as an all-or-nothing harvest.
type SourceHarvester struct {
	Name   string
	walker *Walker
}

// NewSourceHarvester creates a harvester around a configured walker
func NewSourceHarvester(name string, walker *Walker) *SourceHarvester {
	return &SourceHarvester{Name: name, walker: walker}
}

// GetName returns the harvester name
func (h *SourceHarvester) GetName() string {
	return h.Name
}

// GetSource returns the source key
func (h *SourceHarvester) GetSource() string {
	return h.walker.Source
}

// Harvest walks the source and returns every record, or an error and nothing.
func (h *SourceHarvester) Harvest() ([]ListingRecord, error) {
	log := logger.ForSource(h.walker.Source).WithField("run_id", uuid.NewString())
	start := time.Now()

	log.Info().Int("max_pages", h.walker.MaxPages).Msg("Starting harvest")

	result, err := h.walker.walk(log)
	if err != nil {
		log.Error().
			Err(err).
			Int("pages", result.Pages).
			Int("discarded", len(result.Records)).
			Msg("Harvest aborted, discarding partial results")
		return nil, err
	}

	log.Info().
		Int("pages", result.Pages).
		Int("records", len(result.Records)).
		Str("status", result.Status.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Harvest complete")

	return result.Records, nil
}
