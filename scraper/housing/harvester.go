package housing

import (
	"housing-scraper/extract"
	"housing-scraper/models"
	"housing-scraper/storage"
	"housing-scraper/utils"
)

// Harvester accumulates accepted records across pages. It owns the dedup set
// keyed on listing id and the checkpoint cadence; it knows nothing about the
// browser — the page driver hands it fragments.
type Harvester struct {
	engine *extract.Engine
	logger *utils.Logger
	pool   *utils.WorkerPool

	seen         *utils.IDSet
	records      []*models.PropertyRecord
	checkpoint   *storage.CSVWriter
	saveInterval int
	lastSaved    int
}

// NewHarvester creates a Harvester. checkpoint may be nil to disable
// periodic snapshots; saveInterval is the accepted-record cadence between
// snapshots.
func NewHarvester(engine *extract.Engine, checkpoint *storage.CSVWriter, saveInterval, concurrency int, logger *utils.Logger) *Harvester {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Harvester{
		engine:       engine,
		logger:       logger,
		pool:         utils.NewWorkerPool(concurrency, 0),
		seen:         utils.NewIDSet(),
		checkpoint:   checkpoint,
		saveInterval: saveInterval,
	}
}

// ProcessPage runs extraction over one page of fragments and returns how many
// records were accepted. Duplicate listing ids are skipped silently.
// Extraction fans out over the worker pool — records are independent — but
// acceptance order follows fragment order, so output is deterministic for a
// given input sequence.
func (h *Harvester) ProcessPage(frags []models.Fragment, city string, page int) int {
	results := make([]*models.PropertyRecord, len(frags))

	for i, frag := range frags {
		if !h.seen.Add(frag.ListingID) {
			h.logger.Debug("[harvester] Skipping duplicate listing %s", frag.ListingID)
			continue
		}

		i, frag := i, frag
		h.pool.Submit(func() {
			rec, ok := h.engine.Extract(frag, city, i)
			if !ok {
				return
			}
			rec.PageScraped = page
			results[i] = rec
		})
	}
	h.pool.Wait()

	accepted := 0
	for _, rec := range results {
		if rec == nil {
			continue
		}
		h.records = append(h.records, rec)
		accepted++
		h.logger.Debug("[harvester] Scraped (%d): %s (ID: %s)",
			len(h.records), firstN(rec.Title, 50), rec.ListingID)
	}

	h.maybeCheckpoint()
	return accepted
}

// Records returns the accepted records in acceptance order.
func (h *Harvester) Records() []*models.PropertyRecord {
	return h.records
}

// Total returns the number of accepted records so far.
func (h *Harvester) Total() int {
	return len(h.records)
}

// Flush writes the full accepted set to the checkpoint file regardless of
// cadence. Called on exit so an interrupted run keeps its data.
func (h *Harvester) Flush() {
	if h.checkpoint == nil || len(h.records) == 0 {
		return
	}
	if err := h.checkpoint.Write(h.records); err != nil {
		h.logger.Error("[harvester] Checkpoint flush failed: %v", err)
		return
	}
	h.lastSaved = len(h.records)
	h.logger.Info("[harvester] Progress saved: %d properties → %s", len(h.records), h.checkpoint.Path())
}

func (h *Harvester) maybeCheckpoint() {
	if h.checkpoint == nil || h.saveInterval <= 0 {
		return
	}
	if len(h.records)-h.lastSaved >= h.saveInterval {
		h.Flush()
	}
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
