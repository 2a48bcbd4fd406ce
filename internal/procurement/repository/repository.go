package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories is the procurement repository set.
type Repositories struct {
	PO         *PORepository
	GRN        *GRNRepository
	CreditNote *CreditNoteRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		PO:         NewPORepository(db),
		GRN:        NewGRNRepository(db),
		CreditNote: NewCreditNoteRepository(db),
	}
}
