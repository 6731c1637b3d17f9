package entity

import "time"

// Invoice is a delivery note: a batch write-off of stock against named line
// items. Number is the immutable business key (INV-YYYYMMDD-NNNN, sequential
// per day). PDFPath is empty until the document has been rendered.
type Invoice struct {
	ID        string
	Number    string
	CreatedAt time.Time
	CreatedBy string // UserID, empty if the creator was deleted
	PDFPath   string
}
