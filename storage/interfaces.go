package storage

import "housing-scraper/models"

// RecordWriter is the interface any storage backend must satisfy.
type RecordWriter interface {
	Write(records []*models.PropertyRecord) error
	Close() error
}

// RecordStore is a backend the insight pass can read the dataset back from.
type RecordStore interface {
	RecordWriter
	FetchAll() ([]*models.PropertyRecord, error)
}
