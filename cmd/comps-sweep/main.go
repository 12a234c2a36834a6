// Command comps-sweep runs a similarity search over every indexed property
// and writes the results to CSV for offline evaluation.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/config"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
	"github.com/homegrid-io/comps/internal/domain/search/mode"
	"github.com/homegrid-io/comps/internal/export"
	logpkg "github.com/homegrid-io/comps/internal/logger"
	"github.com/homegrid-io/comps/internal/metrics"
	"github.com/homegrid-io/comps/internal/relevance"
	"github.com/homegrid-io/comps/internal/store"
	storeqdrant "github.com/homegrid-io/comps/internal/store/qdrant"
	storeredis "github.com/homegrid-io/comps/internal/store/redis"
	cataloguc "github.com/homegrid-io/comps/internal/usecase/catalog"
	searchuc "github.com/homegrid-io/comps/internal/usecase/search"
	"github.com/homegrid-io/comps/internal/version"
)

func main() {
	var (
		modeFlag = flag.String("mode", string(mode.Balanced), "search mode for the sweep")
		topK     = flag.Int("top-k", 5, "similar properties per listing")
		outPath  = flag.String("out", "similar_properties.csv", "output CSV path")
		dynamic  = flag.Bool("dynamic-filters", false, "derive per-property price/bedroom filters")
		truthCSV = flag.String("ground-truth", "", "ground-truth CSV to score the sweep against")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sweep", zap.String("version", version.String()))

	m := mode.Mode(*modeFlag)
	if !m.IsValid() {
		logger.Fatal("Unknown search mode", zap.String("mode", *modeFlag))
	}

	var vectorStore store.Store
	switch cfg.Store.Driver {
	case "qdrant":
		vectorStore, err = storeqdrant.NewStore(storeqdrant.Config{
			Addr:   cfg.Store.Qdrant.Addr,
			APIKey: cfg.Store.Qdrant.APIKey,
		})
	case "redis":
		vectorStore, err = storeredis.NewStore(storeredis.Config{
			Addrs:    cfg.Store.Redis.Addrs,
			Password: cfg.Store.Redis.Password,
		})
	default:
		logger.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer vectorStore.Close()

	ctx := context.Background()
	if err := vectorStore.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}

	metrics.RegisterPipelineMetrics()

	searchSvc, err := searchuc.New(vectorStore, nil, logger)
	if err != nil {
		logger.Fatal("Failed to create search service", zap.Error(err))
	}
	searchSvc.WithVisualRetrieval(cfg.Search.UseVisual)

	catalogSvc := cataloguc.New(vectorStore)

	properties, err := catalogSvc.AllProperties(ctx)
	if err != nil {
		logger.Fatal("Failed to scroll catalog", zap.Error(err))
	}
	logger.Info("Loaded catalog", zap.Int("properties", len(properties)))

	rows := make([]export.Row, 0, len(properties))
	for _, p := range properties {
		var filters *filter.Filters
		if *dynamic {
			filters = cataloguc.DynamicFilters(p)
		}

		results, err := searchSvc.FindSimilar(ctx, p.ID, m, filters, *topK)
		if err != nil {
			logger.Warn("Skipping property in sweep",
				zap.Uint64("id", p.ID),
				zap.Error(err))
			continue
		}

		ids := make([]uint64, len(results))
		for i, res := range results {
			ids[i] = res.ID
		}
		rows = append(rows, export.Row{PropertyID: p.ID, SimilarIDs: ids})
	}

	f, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal("Failed to create output file", zap.Error(err))
	}
	defer f.Close()

	if err := export.WriteCSV(f, rows); err != nil {
		logger.Fatal("Failed to write CSV", zap.Error(err))
	}

	logger.Info("Sweep finished",
		zap.Int("rows", len(rows)),
		zap.String("out", *outPath))

	if *truthCSV != "" {
		m, err := scoreAgainstGroundTruth(*truthCSV, rows, *topK)
		if err != nil {
			logger.Fatal("Failed to score sweep", zap.Error(err))
		}
		logger.Info("Relevance metrics",
			zap.Int("k", *topK),
			zap.Float64("precision_at_k", m.Precision),
			zap.Float64("recall_at_k", m.Recall),
			zap.Float64("map", m.AP))
	}
}

// scoreAgainstGroundTruth reads expected rankings in the sweep CSV layout
// and averages precision, recall and MAP over the swept properties.
func scoreAgainstGroundTruth(path string, rows []export.Row, k int) (relevance.Metrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return relevance.Metrics{}, err
	}
	defer f.Close()

	truth, err := export.ReadCSV(f)
	if err != nil {
		return relevance.Metrics{}, err
	}

	groundTruth := make(map[uint64]map[uint64]struct{}, len(truth))
	for _, row := range truth {
		set := make(map[uint64]struct{}, len(row.SimilarIDs))
		for _, id := range row.SimilarIDs {
			set[id] = struct{}{}
		}
		groundTruth[row.PropertyID] = set
	}

	predictions := make(map[uint64][]uint64, len(rows))
	for _, row := range rows {
		predictions[row.PropertyID] = row.SimilarIDs
	}

	return relevance.EvaluateAll(groundTruth, predictions, k), nil
}
