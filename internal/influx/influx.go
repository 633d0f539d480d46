// Package influx writes per-trial laydown metrics to InfluxDB. When the server
// is unreachable points are appended as line protocol to a gzip backup file.
package influx

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/pkg/core"
)

// Measurements written per trial.
const (
	MeasurementLaydown = "trial_laydown"
	MeasurementSummary = "trial_summary"
	MeasurementRun     = "trial_run"
)

// retentionSeconds is applied to buckets the manager creates.
const retentionSeconds = 60 * 60 * 24 * 90

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	backupFile *os.File
	now        func() time.Time
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger) *Manager {
	return &Manager{
		IsValid: false,
		Logger:  log.With().Str("backend", "influx").Logger(),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Init connects with a background context.
func (m *Manager) Init() error {
	return m.Connect(context.Background())
}

// Connect establishes a connection to InfluxDB, falling back to the backup file.
func (m *Manager) Connect(ctx context.Context) error {
	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		if err := m.openBackup(); err != nil {
			return err
		}
		m.Logger.Warn().Err(err).Str("backupPath", m.BackupPath).
			Msg("InfluxDB client failed to initialize, using backup writer")
		return nil
	}

	m.IsValid = true
	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	dir := m.cfg.BackupDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating backup dir: %w", err)
	}
	m.BackupPath = filepath.Join(dir,
		fmt.Sprintf("influx_backup.%s.lp.gz", m.now().UTC().Format("20060102_150405")))

	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %v", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgName := m.cfg.Org

	// ensure org exists
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// ensure bucket exists with 90 day retention
	if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
			return err
		}
	}
	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)

	errorsCh := m.Writer.Errors()
	go func(bucketName string, errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
				Msg("Error sending data to InfluxDB")
		}
	}(m.cfg.Bucket, errorsCh)
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		if m.Writer == nil {
			return fmt.Errorf("influxDB bucket '%s' not registered", m.cfg.Bucket)
		}
		m.Writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}

// WriteTrial records the laydown and summary points of t.
func (m *Manager) WriteTrial(t *core.Trial) error {
	for _, p := range TrialPoints(t, m.now()) {
		if err := m.WritePoint(p); err != nil {
			return err
		}
	}
	return nil
}

// BeginBatch is a no-op; runs are recorded at EndBatch.
func (m *Manager) BeginBatch(string, int) error {
	return nil
}

// EndBatch records the run point and flushes pending writes.
func (m *Manager) EndBatch(runID string, written int) error {
	p := influxdb2_write.NewPoint(MeasurementRun,
		map[string]string{"run": runID},
		map[string]interface{}{"written": written},
		m.now(),
	)
	if err := m.WritePoint(p); err != nil {
		return err
	}
	m.flush()
	return nil
}

func (m *Manager) flush() {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Flush(); err != nil {
			m.Logger.Warn().Err(err).Msg("Error flushing backup writer")
		}
	}
}

// Close flushes and releases the client and the backup file.
func (m *Manager) Close() error {
	m.flush()
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			return err
		}
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		err := m.backupFile.Close()
		m.backupFile = nil
		return err
	}
	return nil
}

// TrialPoints builds one laydown point per category present in t and one
// summary point.
func TrialPoints(t *core.Trial, ts time.Time) []*influxdb2_write.Point {
	counts := t.CountByCategory()
	armed := make(map[core.Category]int)
	for _, e := range t.Local {
		if a, ok := core.Armed(e); ok && a {
			armed[e.Category()]++
		}
	}

	points := make([]*influxdb2_write.Point, 0, len(counts)+1)
	all := append(append([]core.Category{}, core.LocalCategories...), core.RemoteCategories...)
	for _, c := range all {
		n, ok := counts[c]
		if !ok {
			continue
		}
		fields := map[string]interface{}{"count": n}
		if c.Weaponizable() {
			fields["armed"] = armed[c]
		}
		points = append(points, influxdb2_write.NewPoint(MeasurementLaydown,
			map[string]string{
				"run":      t.RunID,
				"trial":    t.Name,
				"category": c.Key(),
			},
			fields,
			ts,
		))
	}

	points = append(points, influxdb2_write.NewPoint(MeasurementSummary,
		map[string]string{
			"run":   t.RunID,
			"trial": t.Name,
		},
		map[string]interface{}{
			"index":  t.Index,
			"local":  len(t.Local),
			"remote": len(t.Remote),
		},
		ts,
	))
	return points
}
