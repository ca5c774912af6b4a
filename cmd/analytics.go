package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/analytics"
	"github.com/spigell/job-change/internal/dataset"
	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/model"
	"github.com/spigell/job-change/internal/store"
)

const watchDebounce = 500 * time.Millisecond

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Aggregate the historical dataset into an analytics snapshot",
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalytics(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)

	analyticsCmd.Flags().String("dataset", "", "historical dataset in csv format")
	analyticsCmd.Flags().BoolP("watch", "w", false, "re-run the aggregation whenever the dataset changes")
	analyticsCmd.Flags().String("snapshot-store", "", "snapshot backend: file or sqlite")
	analyticsCmd.Flags().String("snapshot-path", "", "where the snapshot is stored")

	viper.BindPFlag("dataset", analyticsCmd.Flags().Lookup("dataset"))
	viper.BindPFlag("snapshot.store", analyticsCmd.Flags().Lookup("snapshot-store"))
	viper.BindPFlag("snapshot.path", analyticsCmd.Flags().Lookup("snapshot-path"))
}

type analyticsJob struct {
	datasetPath string
	classifier  model.Classifier
	aggregator  *analytics.Aggregator
	store       store.Store
	logger      *zap.Logger
}

func runAnalytics(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, config := setup()
	l = logger.WithComponent(l, "analytics")

	snapshots, err := store.Open(config.Snapshot.Store, config.Snapshot.Path)
	if err != nil {
		l.Fatal("opening the snapshot store", zap.Error(err))
	}
	defer snapshots.Close()

	job := &analyticsJob{
		datasetPath: config.Dataset,
		classifier:  loadImportanceSource(config, l),
		aggregator:  analytics.NewAggregator(l),
		store:       snapshots,
		logger:      l,
	}

	if err := job.run(ctx); err != nil {
		l.Fatal("aggregating analytics", zap.Error(err))
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return
	}

	if err := job.watch(ctx); err != nil {
		l.Fatal("watching the dataset", zap.Error(err))
	}
}

// loadImportanceSource loads the classifier for its importance ranking only.
// Without it the default ranking is used.
func loadImportanceSource(config *Config, l *zap.Logger) model.Classifier {
	classifier, err := model.LoadClassifier(config.Assets.Classifier)
	if err != nil {
		l.Warn("classifier unavailable, feature importance will use defaults",
			append(logger.AssetFields("classifier", config.Assets.Classifier), zap.Error(err))...,
		)
		return nil
	}
	return classifier
}

func (j *analyticsJob) run(ctx context.Context) error {
	ds, err := dataset.LoadCSV(j.datasetPath)
	if err != nil {
		return err
	}

	snapshot, err := j.aggregator.Aggregate(ctx, ds, j.classifier)
	if err != nil {
		return err
	}

	if err := j.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	j.logger.Info("analytics snapshot saved",
		zap.String("dataset", j.datasetPath),
		zap.Int("rows", ds.Len()),
		zap.Strings("fallbacks", snapshot.Fallbacks()),
		zap.Float64("likely_to_change", snapshot.Distribution.Likely),
	)
	return nil
}

// watch re-runs the job after the dataset settles for watchDebounce. The
// parent directory is watched so that editors replacing the file by rename
// are noticed too.
func (j *analyticsJob) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(j.datasetPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	j.logger.Info("watching dataset", zap.String("dataset", target))

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("stopped watching dataset")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			j.logger.Warn("dataset watcher error", zap.Error(err))
		case <-timer.C:
			if err := j.run(ctx); err != nil {
				j.logger.Error("re-running analytics", zap.Error(err))
			}
		}
	}
}
