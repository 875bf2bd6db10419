package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c9s/ordmap/pkg/metrics"
	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/snapshot"
	"github.com/c9s/ordmap/pkg/types"
	"github.com/c9s/ordmap/pkg/util"
)

var log = logrus.WithField("component", "server")

type Config struct {
	Bind string `json:"bind" yaml:"bind"`

	// SnapshotPath is loaded on start and written on shutdown when set
	SnapshotPath string `json:"snapshotPath" yaml:"snapshotPath"`

	// SnapshotSchedule is a cron spec, like "@every 5m", for saving the snapshot
	// while serving
	SnapshotSchedule string `json:"snapshotSchedule" yaml:"snapshotSchedule"`

	// RateLimit is the number of requests per second, zero disables the limiter
	RateLimit float64 `json:"rateLimit" yaml:"rateLimit"`
	Burst     int     `json:"burst" yaml:"burst"`

	AllowOrigins []string `json:"allowOrigins" yaml:"allowOrigins"`

	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

type Server struct {
	Config Config
	Tree   *rbtree.SyncTree[int64, string]

	limiter *rate.Limiter
}

func New(config Config, tree *rbtree.SyncTree[int64, string]) *Server {
	if config.Bind == "" {
		config.Bind = ":8080"
	}

	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"*"}
	}

	s := &Server{Config: config, Tree: tree}
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = int(config.RateLimit) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return s
}

// Run serves the API until ctx is canceled, then shuts the listener down and
// writes the snapshot.
func (s *Server) Run(ctx context.Context) error {
	if err := s.loadSnapshot(); err != nil {
		return err
	}

	var scheduler *cron.Cron
	if s.Config.SnapshotPath != "" && s.Config.SnapshotSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(s.Config.SnapshotSchedule, func() {
			util.LogErr(s.saveSnapshot(), "scheduled snapshot failed")
		}); err != nil {
			return errors.Wrapf(err, "invalid snapshot schedule %q", s.Config.SnapshotSchedule)
		}

		scheduler.Start()
	}

	srv := &http.Server{
		Addr:    s.Config.Bind,
		Handler: s.Engine(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("listening on %s", s.Config.Bind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server error")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
		defer cancel()

		log.Infof("shutting down http server...")
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	// a running scheduled save must not overwrite the final one
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	if saveErr := s.saveSnapshot(); util.LogErr(saveErr, "unable to save snapshot") && err == nil {
		err = saveErr
	}

	return err
}

func (s *Server) loadSnapshot() error {
	if s.Config.SnapshotPath == "" {
		return nil
	}

	entries, err := snapshot.Load(s.Config.SnapshotPath)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			log.Infof("snapshot %s does not exist yet, starting empty", s.Config.SnapshotPath)
			return nil
		}
		return err
	}

	s.Tree.Load(entries)
	s.updateMetrics()
	log.Infof("loaded %d entries from snapshot %s", len(entries), s.Config.SnapshotPath)

	if err := s.Tree.Validate(); err != nil {
		return errors.Wrap(err, "restored tree is invalid")
	}
	return nil
}

func (s *Server) saveSnapshot() error {
	if s.Config.SnapshotPath == "" {
		return nil
	}

	entries := s.Tree.Snapshot(types.InOrder, 0)
	if err := snapshot.Save(s.Config.SnapshotPath, entries); err != nil {
		return err
	}

	log.Infof("saved %d entries to snapshot %s", len(entries), s.Config.SnapshotPath)
	return nil
}

func (s *Server) status() metrics.TreeStatus {
	return metrics.TreeStatus{
		Size:        s.Tree.Size(),
		Height:      s.Tree.Height(),
		BlackHeight: s.Tree.BlackHeight(),
		Stats:       s.Tree.Stats(),
	}
}

func (s *Server) updateMetrics() {
	metrics.UpdateTreeMetrics(s.status())
}
