// Package app wires the customer import example together and drives one
// import run from creation through processing to an optional retry pass.
package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"go.uber.org/fx"

	customerProcessor "github.com/tigerroll/reimport/example/customer-import/internal/processor"
	"github.com/tigerroll/reimport/pkg/imports/config"
	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/manager"
	inframetrics "github.com/tigerroll/reimport/pkg/imports/infrastructure/metrics"
	sqlrepo "github.com/tigerroll/reimport/pkg/imports/infrastructure/repository/sql"
	logginglistener "github.com/tigerroll/reimport/pkg/imports/listener/logging"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

// RunApplication sets up and runs the import application using uber-fx.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig []byte, customerData []byte) {
	app := fx.New(
		fx.Supply(
			config.EmbeddedConfig(embeddedConfig),
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),
		fx.Provide(func() CustomerData { return customerData }),

		logger.Module,
		config.Module,
		config.DatabaseModule,
		sqlrepo.Module,
		inframetrics.Module,
		logginglistener.Module,
		manager.Module,
		customerProcessor.Module,

		fx.Invoke(fx.Annotate(startImport, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // mgr *manager.BatchManager
			"",              // cfg *config.Config
			"",              // data CustomerData
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// CustomerData is the raw CSV input, typically provided via go:embed.
type CustomerData []byte

// Payloads parses the CSV input into item payloads, one per data row. The
// first row is the header and names the payload keys.
func (d CustomerData) Payloads() ([]model.Payload, error) {
	reader := csv.NewReader(bytes.NewReader(d))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var payloads []model.Payload
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		payload := model.Payload{}
		for i, key := range header {
			if i < len(record) {
				payload[key] = record[i]
			}
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// startImport is invoked by Fx to run the import once the container is up.
func startImport(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	mgr *manager.BatchManager,
	cfg *config.Config,
	data CustomerData,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in import execution: %v", r)
					}
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()
				runImport(appCtx, mgr, cfg, data)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

// runImport creates a batch from the embedded CSV, processes it, and retries
// the failed items once when there are any.
func runImport(ctx context.Context, mgr *manager.BatchManager, cfg *config.Config, data CustomerData) {
	payloads, err := data.Payloads()
	if err != nil {
		logger.Errorf("Failed to parse customer data: %v", err)
		return
	}

	batchID, err := mgr.CreateBatch(ctx, customerProcessor.Kind, payloads,
		model.Payload{"source": "embedded customers.csv"}, nil)
	if err != nil {
		logger.Errorf("Failed to create batch: %v", err)
		return
	}

	summary, err := mgr.ProcessBatch(ctx, batchID, cfg.Reimport.Batch.ContinueOnError)
	if err != nil {
		logger.Errorf("Batch '%s' processing failed: %v", batchID, err)
	}
	if summary == nil {
		return
	}
	logSummary(summary)

	if summary.FailedItems == 0 {
		return
	}

	logger.Infof("Retrying %d failed item(s) of batch '%s'...", summary.FailedItems, batchID)
	retryID, err := mgr.Reprocess(ctx, batchID, cfg.Reimport.Batch.FailedItemsOnly, cfg.Reimport.Batch.ContinueOnError)
	if err != nil {
		logger.Errorf("Reprocessing of batch '%s' failed: %v", batchID, err)
		return
	}
	retrySummary, err := mgr.GetSummary(ctx, retryID)
	if err != nil {
		logger.Errorf("Failed to load summary of retry batch '%s': %v", retryID, err)
		return
	}
	logSummary(retrySummary)
}

func logSummary(s *model.BatchSummary) {
	logger.Infof("Batch '%s' finished: status=%s total=%d completed=%d failed=%d skipped=%d",
		s.ID, s.Status, s.TotalItems, s.CompletedItems, s.FailedItems, s.SkippedItems)
	if seconds, ok := s.DurationSeconds(); ok {
		rate, _ := s.ItemsPerSecond()
		logger.Infof("Batch '%s' took %.2fs (%.1f items/s, %.1f%% success).",
			s.ID, seconds, rate, s.SuccessRate())
	}
}
