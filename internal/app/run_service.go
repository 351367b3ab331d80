package app

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/exec"
	"github.com/mmrzaf/dbfill/internal/hashing"
	"github.com/mmrzaf/dbfill/internal/infra/repos/configs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/infra/targets/mssql"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlite"
	"github.com/mmrzaf/dbfill/internal/logging"
	"github.com/mmrzaf/dbfill/internal/validation"
)

// RunService ties config and target resolution, validation, run bookkeeping
// and execution together. Runs execute synchronously: StartRun returns once
// the fill finished and the run record reflects the outcome.
type RunService struct {
	configRepo *configs.FileRepository
	targetRepo *targets.FileRepository
	runRepo    runs.Repository
	validator  *validation.Validator
	logger     *logging.Logger

	batchSize     int
	modulusFactor int
}

func NewRunService(
	configRepo *configs.FileRepository,
	targetRepo *targets.FileRepository,
	runRepo runs.Repository,
	logger *logging.Logger,
	batchSize, modulusFactor int,
) *RunService {
	return &RunService{
		configRepo:    configRepo,
		targetRepo:    targetRepo,
		runRepo:       runRepo,
		validator:     validation.NewValidator(),
		logger:        logger,
		batchSize:     batchSize,
		modulusFactor: modulusFactor,
	}
}

func (s *RunService) StartRun(req *domain.RunRequest) (*domain.Run, error) {
	cfg, targetCfg, seed, err := s.resolveRequest(req)
	if err != nil {
		return nil, err
	}

	configHash, err := hashing.HashConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash config: %w", err)
	}

	run := &domain.Run{
		ConfigID:      cfg.ID,
		ConfigName:    cfg.Name,
		ConfigVersion: cfg.Version,
		TargetID:      targetCfg.ID,
		TargetName:    targetCfg.Name,
		TargetKind:    targetCfg.Kind,
		Seed:          seed,
		ConfigHash:    configHash,
		Status:        domain.RunStatusRunning,
		StartedAt:     time.Now(),
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	s.logger.Infow("starting run", map[string]any{
		"run_id": run.ID, "config": cfg.Name, "target": targetCfg.Name, "seed": seed,
	})

	target, err := buildTarget(targetCfg)
	if err != nil {
		s.finishRun(run, nil, err)
		return run, nil
	}

	executor := exec.NewExecutor(s.logger, s.pickBatchSize(req), s.pickModulusFactor(req))
	stats, err := executor.Execute(cfg, target, seed)
	s.finishRun(run, stats, err)
	return run, nil
}

// Preview renders the INSERT statements a run would execute without touching
// any database. The same seed yields the same statements a real run sends.
func (s *RunService) Preview(req *domain.RunRequest) ([]string, *domain.RunStats, error) {
	cfg, _, seed, err := s.resolvePreview(req)
	if err != nil {
		return nil, nil, err
	}

	script := &scriptTarget{}
	executor := exec.NewExecutor(s.logger, s.pickBatchSize(req), s.pickModulusFactor(req))
	stats, err := executor.Execute(cfg, script, seed)
	if err != nil {
		return nil, nil, err
	}
	return script.statements, stats, nil
}

// TestTarget verifies that a stored target is reachable and reports the
// connect latency.
func (s *RunService) TestTarget(id string) (time.Duration, error) {
	cfg, err := s.targetRepo.Get(id)
	if err != nil {
		return 0, fmt.Errorf("failed to load target: %w", err)
	}
	if err := s.validator.ValidateTarget(cfg); err != nil {
		return 0, fmt.Errorf("target validation failed: %w", err)
	}

	target, err := buildTarget(cfg)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	if err := target.Connect(); err != nil {
		return 0, fmt.Errorf("connect failed: %w", err)
	}
	defer target.Close()
	return time.Since(start), nil
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	return s.runRepo.List(limit, status)
}

func (s *RunService) resolveRequest(req *domain.RunRequest) (*domain.GenerationConfig, *domain.TargetConfig, int64, error) {
	if err := s.validator.ValidateRunRequest(req); err != nil {
		return nil, nil, 0, fmt.Errorf("invalid run request: %w", err)
	}

	cfg, seed, err := s.resolveConfig(req)
	if err != nil {
		return nil, nil, 0, err
	}

	var targetCfg *domain.TargetConfig
	if req.TargetID != "" {
		targetCfg, err = s.targetRepo.Get(req.TargetID)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to load target: %w", err)
		}
	} else {
		targetCfg = req.Target
	}
	if err := s.validator.ValidateTarget(targetCfg); err != nil {
		return nil, nil, 0, fmt.Errorf("target validation failed: %w", err)
	}

	return cfg, targetCfg, seed, nil
}

// resolvePreview skips target resolution; previews only need a config.
func (s *RunService) resolvePreview(req *domain.RunRequest) (*domain.GenerationConfig, *domain.TargetConfig, int64, error) {
	cfg, seed, err := s.resolveConfig(req)
	if err != nil {
		return nil, nil, 0, err
	}
	return cfg, nil, seed, nil
}

func (s *RunService) resolveConfig(req *domain.RunRequest) (*domain.GenerationConfig, int64, error) {
	var cfg *domain.GenerationConfig
	var err error

	if req.ConfigID != "" {
		cfg, err = s.configRepo.Get(req.ConfigID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load config: %w", err)
		}
	} else if req.Config != nil {
		cfg = req.Config
	} else {
		return nil, 0, fmt.Errorf("no config given")
	}

	for i := range cfg.Tables {
		if rows, ok := req.RowOverrides[cfg.Tables[i].Name]; ok {
			cfg.Tables[i].Rows = rows
		}
	}
	for name := range req.RowOverrides {
		if !configHasTable(cfg, name) {
			s.logger.Warnw("row override for unknown table", map[string]any{"table": name})
		}
	}

	if err := s.validator.ValidateConfig(cfg); err != nil {
		return nil, 0, fmt.Errorf("config validation failed: %w", err)
	}

	seed := int64(0)
	switch {
	case req.Seed != nil:
		seed = *req.Seed
	case cfg.Seed != nil:
		seed = *cfg.Seed
	default:
		seed = generateSeed()
	}

	return cfg, seed, nil
}

func (s *RunService) finishRun(run *domain.Run, stats *domain.RunStats, execErr error) {
	now := time.Now()
	run.CompletedAt = &now

	if stats != nil {
		stats.DurationSeconds = now.Sub(run.StartedAt).Seconds()
		statsJSON, _ := json.Marshal(stats)
		run.Stats = statsJSON
	}

	if execErr != nil {
		run.Status = domain.RunStatusFailed
		run.Error = execErr.Error()
		s.logger.Errorw("run failed", map[string]any{"run_id": run.ID, "error": execErr.Error()})
	} else {
		run.Status = domain.RunStatusSuccess
		if stats != nil && stats.TablesFailed > 0 {
			run.Status = domain.RunStatusFailed
			run.Error = fmt.Sprintf("%d table(s) failed", stats.TablesFailed)
		}
		s.logger.Infow("run completed", map[string]any{
			"run_id": run.ID, "status": string(run.Status), "rows": totalRows(stats),
		})
	}

	if err := s.runRepo.Update(run); err != nil {
		s.logger.Errorw("failed to update run", map[string]any{"run_id": run.ID, "error": err.Error()})
	}
}

func (s *RunService) pickBatchSize(req *domain.RunRequest) int {
	if req.BatchSize > 0 {
		return req.BatchSize
	}
	return s.batchSize
}

func (s *RunService) pickModulusFactor(req *domain.RunRequest) int {
	if req.ModulusFactor > 0 {
		return req.ModulusFactor
	}
	return s.modulusFactor
}

func buildTarget(cfg *domain.TargetConfig) (exec.Target, error) {
	switch cfg.Kind {
	case "mssql":
		return mssql.NewTarget(cfg.DSN), nil
	case "sqlite":
		return sqlite.NewTarget(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", cfg.Kind)
	}
}

func configHasTable(cfg *domain.GenerationConfig, name string) bool {
	for i := range cfg.Tables {
		if cfg.Tables[i].Name == name {
			return true
		}
	}
	return false
}

func totalRows(stats *domain.RunStats) int64 {
	if stats == nil {
		return 0
	}
	return stats.TotalRows
}

func generateSeed() int64 {
	var b [8]byte
	rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// scriptTarget collects statements instead of executing them.
type scriptTarget struct {
	statements []string
}

func (t *scriptTarget) Connect() error  { return nil }
func (t *scriptTarget) Close() error    { return nil }
func (t *scriptTarget) Begin() error    { return nil }
func (t *scriptTarget) Commit() error   { return nil }
func (t *scriptTarget) Rollback() error { return nil }
func (t *scriptTarget) Kind() string    { return "script" }

func (t *scriptTarget) ExecNonQuery(query string) error {
	t.statements = append(t.statements, query)
	return nil
}
func (t *scriptTarget) ResolveIdentity(schema, table, column string) (int64, bool, error) {
	return 0, false, nil
}
func (t *scriptTarget) SetIdentityInsert(schema, table string, on bool) error { return nil }
