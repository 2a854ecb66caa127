package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Pipeline drives the three operator-triggered stages: load (roster →
// exchange lookup → register), conditions (index → exchange conditions →
// downstream create) and delete.
type Pipeline struct {
	cfg      *Config
	exchange *ExchangeClient
	clinical *ClinicalClient
	store    *ConditionStore
	runID    string

	mu    sync.Mutex
	index PatientIndex
}

func newPipeline(cfg *Config) *Pipeline {
	tokens := newTokenService(cfg)

	return &Pipeline{
		cfg:      cfg,
		exchange: newExchangeClient(cfg, tokens),
		clinical: newClinicalClient(cfg),
		store:    newConditionStore(cfg),
		runID:    uuid.NewString(),
	}
}

// RunLoad reads the roster, looks each row up in the exchange, registers the
// matches downstream and persists the resulting index. Row lookups run on a
// small worker pool since they are independent; index assembly is serialized
// behind the mutex. A failed row never aborts the stage.
func (p *Pipeline) RunLoad(ctx context.Context) error {
	tx := apm.DefaultTracer.StartTransaction("load", "pipeline")
	defer tx.End()
	ctx = apm.ContextWithTransaction(ctx, tx)

	roster, err := LoadRoster(p.cfg.RosterFile)
	if err != nil {
		return err
	}

	p.index = PatientIndex{}

	// Fan rows out to workers
	var wg sync.WaitGroup
	rowCh := make(chan RosterRow)
	for i := 0; i < p.cfg.LookupWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowCh {
				p.loadRow(ctx, row)
			}
		}()
	}
	for _, row := range roster {
		rowCh <- row
	}
	close(rowCh)
	wg.Wait()

	if err := p.index.Save(p.cfg.IndexFile); err != nil {
		return err
	}

	zapLogger.Info("load stage complete",
		zap.String("run_id", p.runID),
		zap.Int("roster_rows", len(roster)),
		zap.Int("registered", len(p.index)))

	return nil
}

func (p *Pipeline) loadRow(ctx context.Context, row RosterRow) {
	birthDate, err := isoBirthDate(row.DOB)
	if err != nil {
		logger(ctx, fmt.Errorf("%v (roster row: %s %s)", err, row.FirstName, row.LastName))
		return
	}

	patient, err := p.exchange.FindPatient(ctx, row.FirstName, row.LastName, birthDate)
	if errors.Is(err, ErrPatientNotFound) {
		zapLogger.Warn("no exchange match for roster row, skipping",
			zap.String("run_id", p.runID),
			zap.String("given", row.FirstName),
			zap.String("family", row.LastName),
			zap.String("birthdate", birthDate))
		return
	}
	if err != nil {
		logger(ctx, fmt.Errorf("%v (roster row: %s %s)", err, row.FirstName, row.LastName))
		return
	}

	record, err := MapPatient(patient)
	if err != nil {
		logger(ctx, fmt.Errorf("%v (patient: %s)", err, patient.Id))
		return
	}

	registered, err := p.clinical.Register(record)
	if err != nil {
		logger(ctx, fmt.Errorf("%v (patient: %s)", err, patient.Id))
		return
	}
	record.MRN = registered.AssignedMRN()

	p.mu.Lock()
	p.index[patient.Id] = record
	p.mu.Unlock()
}

// RunConditions loads the persisted index and transfers each patient's
// conditions. onlyPatient narrows the run to a single exchange patient id
// when re-running one transfer. One patient's failure does not stop the
// others.
func (p *Pipeline) RunConditions(ctx context.Context, onlyPatient string) error {
	tx := apm.DefaultTracer.StartTransaction("conditions", "pipeline")
	defer tx.End()
	ctx = apm.ContextWithTransaction(ctx, tx)

	index, err := LoadIndex(p.cfg.IndexFile)
	if err != nil {
		return err
	}

	for exchangeID, record := range index {
		if onlyPatient != "" && exchangeID != onlyPatient {
			continue
		}
		if record.MRN == "" {
			zapLogger.Warn("patient has no MRN yet, skipping conditions",
				zap.String("run_id", p.runID),
				zap.String("exchange_id", exchangeID))
			continue
		}
		if err := p.transferConditions(ctx, exchangeID, record.MRN); err != nil {
			logger(ctx, err)
		}
	}

	return nil
}

func (p *Pipeline) transferConditions(ctx context.Context, exchangeID, mrn string) error {
	conditions, err := p.exchange.ListConditions(ctx, exchangeID)
	if err != nil {
		return fmt.Errorf("%v (patient: %s)", err, exchangeID)
	}

	// Per-condition isolation: one failed create must not stop the rest
	created := 0
	for _, resource := range conditions {
		condition := MapCondition(resource, mrn)
		if err := p.store.CreateCondition(ctx, condition); err != nil {
			logger(ctx, fmt.Errorf("error while adding condition: %v (patient: %s)", err, exchangeID))
			continue
		}
		created++
	}

	zapLogger.Info("conditions transferred",
		zap.String("run_id", p.runID),
		zap.String("exchange_id", exchangeID),
		zap.String("mrn", mrn),
		zap.Int("retrieved", len(conditions)),
		zap.Int("created", created))

	return nil
}

// RunDelete removes a single patient by MRN and surfaces the outcome.
func (p *Pipeline) RunDelete(ctx context.Context, mrn string) error {
	tx := apm.DefaultTracer.StartTransaction("delete", "pipeline")
	defer tx.End()

	status, err := p.clinical.Delete(mrn)
	if err != nil {
		return err
	}

	zapLogger.Info("patient deleted",
		zap.String("run_id", p.runID),
		zap.String("mrn", mrn),
		zap.Int("status", status))

	return nil
}
