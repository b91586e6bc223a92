// Package repository defines the persistence contract of the resolution
// engine and the in-memory prestige ranking index.
package repository

import (
	"context"
	"time"

	"github.com/okian/mercwork/internal/domain/model"
)

// Store provides transactional access to every persisted record.
type Store interface {
	// Atomic runs fn in one transaction. Any error from fn rolls back every
	// write it made.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the set of reads and writes available inside a transaction.
type Tx interface {
	JobStore
	ParticipantStore
	InventoryStore
	ProgramStore
	PrestigeStore
	FactionStore
}

// JobStore reads and writes jobs.
type JobStore interface {
	// GetJob returns model.ErrJobNotFound for unknown ids.
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// CreateJob inserts a new job.
	CreateJob(ctx context.Context, job *model.Job) error
	// SaveJob overwrites job only if its stored status still equals expect.
	// It reports false when the guard did not match.
	SaveJob(ctx context.Context, job *model.Job, expect model.JobStatus) (bool, error)
	// ListDueJobs returns ids of non-terminal jobs whose timer elapsed by now.
	ListDueJobs(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// ParticipantStore reads and writes the roster.
type ParticipantStore interface {
	// GetParticipant returns model.ErrParticipantNotFound for unknown ids.
	GetParticipant(ctx context.Context, id string) (*model.Participant, error)
	PutParticipant(ctx context.Context, p *model.Participant) error
	DeleteParticipant(ctx context.Context, id string) error
	ListParticipants(ctx context.Context, ownerID string) ([]*model.Participant, error)
}

// InventoryStore tracks consumable quantities per requester.
type InventoryStore interface {
	Quantity(ctx context.Context, requesterID, itemID string) (int, error)
	// AdjustInventory adds delta and removes the line at zero. It returns
	// model.ErrNotOwned when the result would be negative.
	AdjustInventory(ctx context.Context, requesterID, itemID string, delta int) (int, error)
}

// ProgramStore holds the consumable catalog.
type ProgramStore interface {
	// GetProgram returns model.ErrProgramNotFound for unknown ids.
	GetProgram(ctx context.Context, id string) (model.Program, error)
	PutProgram(ctx context.Context, p model.Program) error
	ListPrograms(ctx context.Context) ([]model.Program, error)
}

// PrestigeStore holds prestige profiles.
type PrestigeStore interface {
	// GetPrestige returns a zero profile for unknown requesters.
	GetPrestige(ctx context.Context, requesterID string) (*model.PrestigeProfile, error)
	PutPrestige(ctx context.Context, p *model.PrestigeProfile) error
	ListPrestige(ctx context.Context) ([]model.PrestigeProfile, error)
}

// FactionStore holds faction standings and their history.
type FactionStore interface {
	// GetFactionLedger returns the requester's standings plus history at or
	// after since. Unknown requesters get an empty ledger.
	GetFactionLedger(ctx context.Context, requesterID string, since time.Time) (*model.FactionLedger, error)
	// SaveFactionLedger upserts every standing and appends the given
	// history entries.
	SaveFactionLedger(ctx context.Context, ledger *model.FactionLedger, appended []model.FactionHistoryEntry) error
	// ListFactionRequesters returns requesters with any positive threat.
	ListFactionRequesters(ctx context.Context) ([]string, error)
}
