package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richarq/admetrics/internal/auth"
	"github.com/richarq/admetrics/internal/domain"
	"github.com/richarq/admetrics/internal/repository"
)

// ErrUnsupportedFormat is returned when an intake file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Service drives the ingestion pipeline: platform detection, format
// dispatch, parsing and the campaign/metric upsert engine. Files are
// processed one at a time; no concurrent ingestion happens within a run.
type Service struct {
	tenantRepo repository.TenantRepository
	campaigns  repository.CampaignRepository
	metrics    repository.CampaignMetricRepository
	logRepo    repository.IngestionLogRepository
	dataDir    string
	logger     *zap.Logger
}

// NewService creates a new ingestion service reading files from dataDir.
func NewService(
	tenantRepo repository.TenantRepository,
	campaigns repository.CampaignRepository,
	metrics repository.CampaignMetricRepository,
	logRepo repository.IngestionLogRepository,
	dataDir string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tenantRepo: tenantRepo,
		campaigns:  campaigns,
		metrics:    metrics,
		logRepo:    logRepo,
		dataDir:    dataDir,
		logger:     logger,
	}
}

// Result summarizes the ingestion of one file.
type Result struct {
	Platform         string   `json:"platform"`
	FileName         string   `json:"fileName"`
	TotalRows        int      `json:"totalRows"`
	CampaignsCreated int      `json:"campaignsCreated"`
	CampaignsUpdated int      `json:"campaignsUpdated"`
	MetricsCreated   int      `json:"metricsCreated"`
	MetricsUpdated   int      `json:"metricsUpdated"`
	Errors           []string `json:"errors"`
	DurationMs       int64    `json:"durationMs"`
}

// PlatformCount pairs a platform with its campaign count.
type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}

// Stats aggregates per-tenant storage counts.
type Stats struct {
	TotalCampaigns int64           `json:"totalCampaigns"`
	TotalMetrics   int64           `json:"totalMetrics"`
	ByPlatform     []PlatformCount `json:"byPlatform"`
}

// IngestAll processes every spreadsheet/CSV in the intake directory for one
// tenant. A failure in one file is recorded in that file's result and the
// batch continues; only missing directory, empty directory or unknown tenant
// abort the whole run.
func (s *Service) IngestAll(ctx context.Context, tenantSlug string) ([]Result, error) {
	if _, err := os.Stat(s.dataDir); err != nil {
		return nil, fmt.Errorf("intake directory %s: %w", s.dataDir, err)
	}

	files, err := s.listIntakeFiles("")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no csv/excel files found in %s", s.dataDir)
	}

	tenant, err := s.resolveTenant(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting batch ingestion",
		zap.String("tenant", tenantSlug),
		zap.Int("files", len(files)))

	results := make([]Result, 0, len(files))
	for _, file := range files {
		platform, matched := DetectPlatform(file)
		if !matched {
			s.logger.Warn("could not detect platform from filename, defaulting to GOOGLE_ADS",
				zap.String("file", file))
		}
		result, err := s.ingestFile(ctx, filepath.Join(s.dataDir, file), platform, tenant)
		if err != nil {
			s.logger.Error("file ingestion failed",
				zap.String("file", file),
				zap.Error(err))
			results = append(results, Result{
				Platform: string(platform),
				FileName: file,
				Errors:   []string{err.Error()},
			})
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// IngestPlatform processes the first intake file whose name matches the
// given platform token. Unlike IngestAll, file-level errors propagate to the
// caller.
func (s *Service) IngestPlatform(ctx context.Context, token string, tenantSlug string) (Result, error) {
	platform, err := platformFromToken(token)
	if err != nil {
		return Result{}, err
	}

	files, err := s.listIntakeFiles(strings.ToLower(token))
	if err != nil {
		return Result{}, err
	}
	if len(files) == 0 {
		return Result{}, fmt.Errorf("no file found for platform %s in %s", token, s.dataDir)
	}

	tenant, err := s.resolveTenant(ctx, tenantSlug)
	if err != nil {
		return Result{}, err
	}

	return s.ingestFile(ctx, filepath.Join(s.dataDir, files[0]), platform, tenant)
}

// IngestFile processes a single file for a tenant identified by slug.
func (s *Service) IngestFile(ctx context.Context, path string, platform domain.Platform, tenantSlug string) (Result, error) {
	tenant, err := s.resolveTenant(ctx, tenantSlug)
	if err != nil {
		return Result{}, err
	}
	return s.ingestFile(ctx, path, platform, tenant)
}

// resolveTenant looks up a tenant by slug and checks it against the
// authenticated scope, when the request carries one.
func (s *Service) resolveTenant(ctx context.Context, slug string) (domain.Tenant, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Tenant{}, err
	}
	if err := auth.EnforceTenantScope(ctx, tenant.ID); err != nil {
		return domain.Tenant{}, err
	}
	return tenant, nil
}

func (s *Service) ingestFile(ctx context.Context, path string, platform domain.Platform, tenant domain.Tenant) (Result, error) {
	started := time.Now()
	fileName := filepath.Base(path)

	s.logger.Info("processing file",
		zap.String("file", fileName),
		zap.String("platform", string(platform)),
		zap.String("tenant", tenant.Slug))

	payload, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", fileName, err)
	}

	rows, err := s.parseFile(payload, fileName, platform)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("rows parsed",
		zap.String("file", fileName),
		zap.Int("rows", len(rows)))

	counts := s.persistRows(ctx, rows, platform, tenant.ID, fileName)

	return Result{
		Platform:         string(platform),
		FileName:         fileName,
		TotalRows:        len(rows),
		CampaignsCreated: counts.campaignsCreated,
		CampaignsUpdated: counts.campaignsUpdated,
		MetricsCreated:   counts.metricsCreated,
		MetricsUpdated:   counts.metricsUpdated,
		Errors:           counts.errors,
		DurationMs:       time.Since(started).Milliseconds(),
	}, nil
}

// parseFile dispatches on extension and platform: Google Ads CSVs take the
// UTF-16/3-header-row path, other CSVs the generic one, .xlsx/.xls the
// workbook path.
func (s *Service) parseFile(payload []byte, fileName string, platform domain.Platform) ([]ParsedRow, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		if platform == domain.PlatformGoogleAds {
			return s.parseGoogleAdsCSV(payload, fileName)
		}
		return s.parseDelimited(payload, platform, fileName)
	case ".xlsx", ".xls":
		return s.parseWorkbook(payload, platform, fileName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Stats returns campaign/metric counts for one tenant, broken down by
// platform. It is the read side consumed by the external report generator.
func (s *Service) Stats(ctx context.Context, tenantSlug string) (Stats, error) {
	tenant, err := s.resolveTenant(ctx, tenantSlug)
	if err != nil {
		return Stats{}, err
	}

	totalCampaigns, err := s.campaigns.CountByTenant(ctx, tenant.ID)
	if err != nil {
		return Stats{}, err
	}
	totalMetrics, err := s.metrics.CountByTenant(ctx, tenant.ID)
	if err != nil {
		return Stats{}, err
	}
	byPlatform, err := s.campaigns.CountByPlatform(ctx, tenant.ID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalCampaigns: totalCampaigns,
		TotalMetrics:   totalMetrics,
		ByPlatform:     make([]PlatformCount, 0, len(byPlatform)),
	}
	for _, platform := range domain.Platforms() {
		if count, ok := byPlatform[platform]; ok {
			stats.ByPlatform = append(stats.ByPlatform, PlatformCount{
				Platform: string(platform),
				Count:    count,
			})
		}
	}
	return stats, nil
}

// Logs returns recent ingestion errors for a tenant, newest first, optionally
// filtered to one file.
func (s *Service) Logs(ctx context.Context, tenantSlug, fileName string, limit, offset int) ([]domain.IngestionLogEntry, error) {
	tenant, err := s.resolveTenant(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	return s.logRepo.List(ctx, tenant.ID, fileName, limit, offset)
}

// DetectPlatform guesses the source platform from a filename. This is a
// heuristic, not authoritative: nothing stops a Meta export being named
// "report.csv". The second return value reports whether any token matched;
// when none did the caller gets Google Ads as a default.
func DetectPlatform(fileName string) (domain.Platform, bool) {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "google"):
		return domain.PlatformGoogleAds, true
	case strings.Contains(lower, "meta"), strings.Contains(lower, "facebook"), strings.Contains(lower, "fb"):
		return domain.PlatformMetaAds, true
	case strings.Contains(lower, "tiktok"), strings.Contains(lower, "tik"):
		return domain.PlatformTikTokAds, true
	}
	return domain.PlatformGoogleAds, false
}

func platformFromToken(token string) (domain.Platform, error) {
	switch strings.ToLower(token) {
	case "google":
		return domain.PlatformGoogleAds, nil
	case "meta", "facebook", "fb":
		return domain.PlatformMetaAds, nil
	case "tiktok", "tik":
		return domain.PlatformTikTokAds, nil
	}
	return "", fmt.Errorf("unknown platform %q", token)
}

func (s *Service) listIntakeFiles(token string) ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read intake directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		switch filepath.Ext(name) {
		case ".csv", ".xlsx", ".xls":
		default:
			continue
		}
		if token != "" && !matchesToken(name, token) {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

func matchesToken(name, token string) bool {
	if strings.Contains(name, token) {
		return true
	}
	// Meta exports often carry the old brand name instead.
	if token == "meta" && (strings.Contains(name, "facebook") || strings.Contains(name, "fb")) {
		return true
	}
	return false
}

// persistCounts accumulates the upsert engine's outcome for one file.
type persistCounts struct {
	campaignsCreated int
	campaignsUpdated int
	metricsCreated   int
	metricsUpdated   int
	errors           []string
}

// persistRows is the upsert engine. Rows are grouped by external id in
// insertion order; each group upserts one campaign on (external_id, platform)
// and one metric snapshot per (campaign_id, date). Created/updated counters
// come from a pre-existence check before each upsert. A failure on one
// record is appended to the error list and processing continues.
func (s *Service) persistRows(ctx context.Context, rows []ParsedRow, platform domain.Platform, tenantID uuid.UUID, fileName string) persistCounts {
	// errors starts non-nil so a clean summary serializes as [], not null.
	counts := persistCounts{errors: []string{}}

	order := make([]string, 0, len(rows))
	groups := make(map[string][]ParsedRow, len(rows))
	for _, row := range rows {
		if _, seen := groups[row.ExternalID]; !seen {
			order = append(order, row.ExternalID)
		}
		groups[row.ExternalID] = append(groups[row.ExternalID], row)
	}

	s.logger.Info("upserting campaigns",
		zap.String("file", fileName),
		zap.Int("campaigns", len(order)))

	for _, externalID := range order {
		group := groups[externalID]
		first := group[0]

		existed, err := s.campaigns.Exists(ctx, externalID, platform)
		if err != nil {
			counts.errors = append(counts.errors, fmt.Sprintf("campaign %s: %v", externalID, err))
			s.recordError(ctx, tenantID, platform, fileName, &first.Row, err)
			continue
		}

		campaign, err := s.campaigns.Upsert(ctx, domain.NewCampaign(tenantID, externalID, first.Name, platform))
		if err != nil {
			counts.errors = append(counts.errors, fmt.Sprintf("campaign %s: %v", externalID, err))
			s.recordError(ctx, tenantID, platform, fileName, &first.Row, err)
			continue
		}
		if existed {
			counts.campaignsUpdated++
		} else {
			counts.campaignsCreated++
		}

		for _, row := range group {
			metricExisted, err := s.metrics.Exists(ctx, campaign.ID, row.Date)
			if err != nil {
				counts.errors = append(counts.errors, fmt.Sprintf("metric %s/%s: %v", externalID, row.Date.Format("2006-01-02"), err))
				s.recordError(ctx, tenantID, platform, fileName, &row.Row, err)
				continue
			}

			metric := domain.CampaignMetric{
				ID:          uuid.New(),
				CampaignID:  campaign.ID,
				Date:        row.Date,
				Impressions: row.Impressions,
				Clicks:      row.Clicks,
				Spend:       row.Spend,
				Conversions: row.Conversions,
				CPC:         row.CPC,
				CPM:         row.CPM,
				CTR:         row.CTR,
			}
			if _, err := s.metrics.Upsert(ctx, metric); err != nil {
				counts.errors = append(counts.errors, fmt.Sprintf("metric %s/%s: %v", externalID, row.Date.Format("2006-01-02"), err))
				s.recordError(ctx, tenantID, platform, fileName, &row.Row, err)
				continue
			}
			if metricExisted {
				counts.metricsUpdated++
			} else {
				counts.metricsCreated++
			}
		}
	}

	return counts
}

func (s *Service) recordError(ctx context.Context, tenantID uuid.UUID, platform domain.Platform, fileName string, rowNumber *int, err error) {
	if s.logRepo == nil || err == nil {
		return
	}
	entry := domain.IngestionLogEntry{
		TenantID:     tenantID,
		Platform:     platform,
		FileName:     fileName,
		RowNumber:    rowNumber,
		ErrorMessage: err.Error(),
	}
	if logErr := s.logRepo.Record(ctx, entry); logErr != nil {
		s.logger.Warn("failed to persist ingestion log", zap.Error(logErr))
	}
}
