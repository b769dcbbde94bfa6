// Package migration drives the Morse to Shannon migration: import a source
// credential, provision a destination wallet, and hand both to the remote
// migration service.
package migration

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mrz1836/poktwallet/internal/keys"
	"github.com/mrz1836/poktwallet/internal/metrics"
	"github.com/mrz1836/poktwallet/internal/network"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Stage is a migration session state.
type Stage int

// Session stages, in order.
const (
	StageAwaitingSourceImport Stage = iota
	StageAwaitingDestinationProvision
	StageAwaitingConfirmation
	StageCompleted
	StageFailed
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageAwaitingSourceImport:
		return "awaiting-source-import"
	case StageAwaitingDestinationProvision:
		return "awaiting-destination-provision"
	case StageAwaitingConfirmation:
		return "awaiting-confirmation"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether only Reset is accepted.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Remote is the migration service.
type Remote interface {
	Health(ctx context.Context) (*HealthResponse, error)
	Migrate(ctx context.Context, payload *Payload) (*MigrateResponse, error)
}

// Importer imports credentials into the registry.
type Importer interface {
	Import(ctx context.Context, code, passphrase string, model wallet.AccountModel) (*wallet.ImportResult, error)
}

// Logger is the logging interface used by the orchestrator.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Dependencies are the collaborators of an Orchestrator. Resolver, Logger,
// and Metrics are optional.
type Dependencies struct {
	Importer      Importer
	Registry      *wallet.Registry
	Deriver       keys.KeyDeriver
	Resolver      *network.Resolver
	Remote        Remote
	ShannonPrefix string
	Logger        Logger
	Metrics       *metrics.Metrics
}

// Orchestrator creates migration sessions over shared collaborators.
type Orchestrator struct {
	deps Dependencies
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(deps Dependencies) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Global
	}
	if deps.ShannonPrefix == "" {
		deps.ShannonPrefix = "pokt"
	}
	return &Orchestrator{deps: deps}
}

// NewSession starts a session awaiting the source import.
func (o *Orchestrator) NewSession() *Session {
	return &Session{o: o}
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	SourceAddress      string `json:"source_address,omitempty"`
	DestinationAddress string `json:"destination_address,omitempty"`
	Stage              Stage  `json:"-"`
	StageName          string `json:"stage"`
	LastError          error  `json:"-"`
}

// Provisioned describes the destination chosen by ProvisionDestination.
type Provisioned struct {
	Record *wallet.Record

	// Reused is true when an existing Shannon wallet was selected.
	Reused bool

	// Mnemonic is set only for a newly generated wallet, so it can be shown
	// to the user once.
	Mnemonic string
}

// Outcome is the result of a successful hand-off.
type Outcome struct {
	SourceAddress      string             `json:"source_address"`
	DestinationAddress string             `json:"destination_address"`
	Network            network.Resolution `json:"network"`
	Response           json.RawMessage    `json:"response,omitempty"`
	CompletedAt        time.Time          `json:"completed_at"`
}

// Session is one migration attempt. Its stages run strictly in order and
// never concurrently; calls made in the wrong stage fail with INVALID_STAGE
// and leave the session unchanged.
type Session struct {
	o *Orchestrator

	mu                 sync.Mutex
	stage              Stage
	sourceAddress      string
	destinationAddress string
	sourcePassphrase   string
	lastError          error
}

// ImportSource imports the Morse credential. On failure the session stays
// in place with the error recorded.
func (s *Session) ImportSource(ctx context.Context, code, passphrase string) (*wallet.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StageAwaitingSourceImport); err != nil {
		return nil, err
	}

	res, err := s.o.deps.Importer.Import(ctx, code, passphrase, wallet.ModelMorse)
	if err != nil {
		s.lastError = err
		return nil, err
	}

	s.sourceAddress = res.Record.Address
	s.sourcePassphrase = res.Passphrase
	s.lastError = nil
	s.stage = StageAwaitingDestinationProvision
	s.o.deps.Logger.Debug("migration: source %s imported", s.sourceAddress)
	return res, nil
}

// ProvisionDestination selects or creates the Shannon wallet.
func (s *Session) ProvisionDestination(ctx context.Context, passphrase string) (*Provisioned, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StageAwaitingDestinationProvision); err != nil {
		return nil, err
	}

	p, err := s.o.provision(ctx, passphrase)
	if err != nil {
		s.lastError = err
		return nil, err
	}

	s.destinationAddress = p.Record.Address
	s.lastError = nil
	s.stage = StageAwaitingConfirmation
	s.o.deps.Logger.Debug("migration: destination %s (reused=%t)", s.destinationAddress, p.Reused)
	return p, nil
}

// ConfirmMigrate performs the remote hand-off. Any failure is terminal.
func (s *Session) ConfirmMigrate(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StageAwaitingConfirmation); err != nil {
		return nil, err
	}

	out, err := s.o.handOff(ctx, s.sourceAddress, s.destinationAddress, s.sourcePassphrase)
	s.o.deps.Metrics.RecordMigration(err)
	if err != nil {
		s.lastError = err
		s.stage = StageFailed
		s.o.deps.Logger.Error("migration: %s -> %s failed: %v", s.sourceAddress, s.destinationAddress, err)
		return nil, err
	}

	s.stage = StageCompleted
	s.lastError = nil
	s.o.deps.Logger.Debug("migration: %s -> %s completed", s.sourceAddress, s.destinationAddress)
	return out, nil
}

// Reset discards the session state and starts over.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stage = StageAwaitingSourceImport
	s.sourceAddress = ""
	s.destinationAddress = ""
	s.sourcePassphrase = ""
	s.lastError = nil
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SourceAddress:      s.sourceAddress,
		DestinationAddress: s.destinationAddress,
		Stage:              s.stage,
		StageName:          s.stage.String(),
		LastError:          s.lastError,
	}
}

func (s *Session) expect(stage Stage) error {
	if s.stage == stage {
		return nil
	}
	return walleterr.WithDetails(walleterr.ErrInvalidStage, map[string]string{
		"stage":    s.stage.String(),
		"expected": stage.String(),
	})
}

// handOff probes the service, builds the payload, and submits it.
func (o *Orchestrator) handOff(ctx context.Context, sourceAddress, destinationAddress, passphrase string) (*Outcome, error) {
	resolution := network.Resolution{AccountModel: wallet.ModelMorse, Source: network.SourceDefault}
	if o.deps.Resolver != nil {
		var err error
		if resolution, err = o.deps.Resolver.Resolve(ctx, sourceAddress); err != nil {
			return nil, err
		}
	}

	if _, err := o.deps.Remote.Health(ctx); err != nil {
		return nil, err
	}

	source, err := o.deps.Registry.FindByAddress(ctx, wallet.ModelMorse, sourceAddress)
	if err != nil {
		return nil, err
	}
	destination, err := o.deps.Registry.FindByAddress(ctx, wallet.ModelShannon, destinationAddress)
	if err != nil {
		return nil, err
	}

	secret, err := SecretFor(source, passphrase)
	if err != nil {
		return nil, err
	}
	payload, err := BuildPayload(secret, destination)
	if err != nil {
		return nil, err
	}

	resp, err := o.deps.Remote.Migrate(ctx, payload)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		SourceAddress:      sourceAddress,
		DestinationAddress: destinationAddress,
		Network:            resolution,
		Response:           resp.Raw,
		CompletedAt:        time.Now().UTC(),
	}, nil
}
