package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richarq/admetrics/internal/auth"
	"github.com/richarq/admetrics/internal/domain"
	"github.com/richarq/admetrics/internal/repository"
)

type stubTenantRepo struct {
	tenants map[string]domain.Tenant
}

func (s *stubTenantRepo) Create(_ context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	s.tenants[tenant.Slug] = tenant
	return tenant, nil
}

func (s *stubTenantRepo) GetBySlug(_ context.Context, slug string) (domain.Tenant, error) {
	tenant, ok := s.tenants[slug]
	if !ok {
		return domain.Tenant{}, fmt.Errorf("tenant %q: %w", slug, repository.ErrNotFound)
	}
	return tenant, nil
}

func (s *stubTenantRepo) List(_ context.Context) ([]domain.Tenant, error) {
	tenants := make([]domain.Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

type stubCampaignRepo struct {
	byKey     map[string]domain.Campaign
	upsertErr error
}

func campaignKey(externalID string, platform domain.Platform) string {
	return externalID + "|" + string(platform)
}

func (s *stubCampaignRepo) Exists(_ context.Context, externalID string, platform domain.Platform) (bool, error) {
	_, ok := s.byKey[campaignKey(externalID, platform)]
	return ok, nil
}

func (s *stubCampaignRepo) Upsert(_ context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	if s.upsertErr != nil {
		return domain.Campaign{}, s.upsertErr
	}
	key := campaignKey(campaign.ExternalID, campaign.Platform)
	if existing, ok := s.byKey[key]; ok {
		existing.Name = campaign.Name
		s.byKey[key] = existing
		return existing, nil
	}
	s.byKey[key] = campaign
	return campaign, nil
}

func (s *stubCampaignRepo) CountByTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	for _, c := range s.byKey {
		if c.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (s *stubCampaignRepo) CountByPlatform(_ context.Context, tenantID uuid.UUID) (map[domain.Platform]int64, error) {
	counts := make(map[domain.Platform]int64)
	for _, c := range s.byKey {
		if c.TenantID == tenantID {
			counts[c.Platform]++
		}
	}
	return counts, nil
}

type stubMetricRepo struct {
	byKey map[string]domain.CampaignMetric
}

func metricKey(campaignID uuid.UUID, date time.Time) string {
	return campaignID.String() + "|" + date.Format("2006-01-02")
}

func (s *stubMetricRepo) Exists(_ context.Context, campaignID uuid.UUID, date time.Time) (bool, error) {
	_, ok := s.byKey[metricKey(campaignID, date)]
	return ok, nil
}

func (s *stubMetricRepo) Upsert(_ context.Context, metric domain.CampaignMetric) (domain.CampaignMetric, error) {
	key := metricKey(metric.CampaignID, metric.Date)
	if existing, ok := s.byKey[key]; ok {
		metric.ID = existing.ID
	}
	s.byKey[key] = metric
	return metric, nil
}

func (s *stubMetricRepo) CountByTenant(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(s.byKey)), nil
}

type stubLogRepo struct {
	entries []domain.IngestionLogEntry
}

func (s *stubLogRepo) Record(_ context.Context, entry domain.IngestionLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubLogRepo) List(_ context.Context, _ uuid.UUID, _ string, _ int, _ int) ([]domain.IngestionLogEntry, error) {
	return s.entries, nil
}

type serviceFixture struct {
	service   *Service
	tenant    domain.Tenant
	campaigns *stubCampaignRepo
	metrics   *stubMetricRepo
	logs      *stubLogRepo
}

func newServiceFixture(t *testing.T, dataDir string) *serviceFixture {
	t.Helper()
	tenant := domain.NewTenant("Richarq", "richarq")
	tenants := &stubTenantRepo{tenants: map[string]domain.Tenant{tenant.Slug: tenant}}
	campaigns := &stubCampaignRepo{byKey: make(map[string]domain.Campaign)}
	metrics := &stubMetricRepo{byKey: make(map[string]domain.CampaignMetric)}
	logs := &stubLogRepo{}
	return &serviceFixture{
		service:   NewService(tenants, campaigns, metrics, logs, dataDir, zap.NewNop()),
		tenant:    tenant,
		campaigns: campaigns,
		metrics:   metrics,
		logs:      logs,
	}
}

func writeIntakeFile(t *testing.T, dir, name string, payload []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), payload, 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
}

func googleIntakePayload(rows ...string) []byte {
	return googleCSVFixture(rows)
}

func metaIntakePayload(rows ...string) []byte {
	lines := append([]string{
		"Nombre de la campaña,Inicio del informe,Importe gastado (USD),Impresiones,Clics en el enlace",
	}, rows...)
	return []byte(strings.Join(lines, "\n"))
}

func TestIngestAllBatchContinuesPastBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))
	// A header with no data rows aborts that file's parse.
	writeIntakeFile(t, dir, "meta_ads.csv", []byte("Nombre de la campaña,Importe gastado (USD)"))
	writeIntakeFile(t, dir, "tiktok_ads.csv", []byte(strings.Join([]string{
		"Campaign name,Cost,Impressions,Clicks (destination)",
		"App Install Push,55.10,3000,90",
	}, "\n")))

	fixture := newServiceFixture(t, dir)
	results, err := fixture.service.IngestAll(context.Background(), "richarq")
	if err != nil {
		t.Fatalf("IngestAll returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if len(results[0].Errors) != 0 || results[0].CampaignsCreated != 1 {
		t.Errorf("google result = %+v, want 1 campaign created and no errors", results[0])
	}
	if results[0].Errors == nil {
		t.Error("clean result must carry an empty error list, not nil")
	}
	if len(results[1].Errors) == 0 {
		t.Errorf("meta result should carry the parse error, got %+v", results[1])
	}
	if results[1].Platform != string(domain.PlatformMetaAds) {
		t.Errorf("meta result platform = %s", results[1].Platform)
	}
	if len(results[2].Errors) != 0 || results[2].MetricsCreated != 1 {
		t.Errorf("tiktok result = %+v, want 1 metric created and no errors", results[2])
	}
}

func TestIngestAllSecondRunOnlyUpdates(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
		"Display\tHabilitada\t30\t900\t\t\t24.00\t0",
	))

	fixture := newServiceFixture(t, dir)
	ctx := context.Background()

	first, err := fixture.service.IngestAll(ctx, "richarq")
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if first[0].CampaignsCreated != 2 || first[0].MetricsCreated != 2 {
		t.Fatalf("first run = %+v, want 2 campaigns and 2 metrics created", first[0])
	}

	second, err := fixture.service.IngestAll(ctx, "richarq")
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	got := second[0]
	if got.CampaignsCreated != 0 || got.MetricsCreated != 0 {
		t.Errorf("second run created records: %+v", got)
	}
	if got.CampaignsUpdated != 2 || got.MetricsUpdated != 2 {
		t.Errorf("second run = %+v, want 2 campaigns and 2 metrics updated", got)
	}
	if len(fixture.campaigns.byKey) != 2 {
		t.Errorf("expected 2 stored campaigns, got %d", len(fixture.campaigns.byKey))
	}
	if len(fixture.metrics.byKey) != 2 {
		t.Errorf("expected 2 stored metrics, got %d", len(fixture.metrics.byKey))
	}
}

func TestIngestFileReplacesMetricSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))

	fixture := newServiceFixture(t, dir)
	ctx := context.Background()
	path := filepath.Join(dir, "google_ads.csv")

	if _, err := fixture.service.IngestFile(ctx, path, domain.PlatformGoogleAds, "richarq"); err != nil {
		t.Fatalf("first ingest returned error: %v", err)
	}

	// Same campaign and date, corrected spend. The snapshot must be
	// replaced wholesale, not merged.
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t100\t4000\t2.50%\t1.10\t99.00\t7",
	))
	if _, err := fixture.service.IngestFile(ctx, path, domain.PlatformGoogleAds, "richarq"); err != nil {
		t.Fatalf("second ingest returned error: %v", err)
	}

	if len(fixture.metrics.byKey) != 1 {
		t.Fatalf("expected 1 stored metric, got %d", len(fixture.metrics.byKey))
	}
	for _, metric := range fixture.metrics.byKey {
		if metric.Spend != 99 {
			t.Errorf("spend = %v, want 99 from the later file", metric.Spend)
		}
		if metric.Clicks != 100 {
			t.Errorf("clicks = %v, want 100 from the later file", metric.Clicks)
		}
	}
}

func TestIngestPlatformMatchesFileByToken(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))
	writeIntakeFile(t, dir, "facebook_export.csv", metaIntakePayload(
		"Awareness Push,2025-09-15,120.50,50000,340",
	))

	fixture := newServiceFixture(t, dir)
	result, err := fixture.service.IngestPlatform(context.Background(), "meta", "richarq")
	if err != nil {
		t.Fatalf("IngestPlatform returned error: %v", err)
	}
	if result.FileName != "facebook_export.csv" {
		t.Errorf("file = %s, want facebook_export.csv", result.FileName)
	}
	if result.Platform != string(domain.PlatformMetaAds) {
		t.Errorf("platform = %s", result.Platform)
	}
	if result.CampaignsCreated != 1 {
		t.Errorf("campaignsCreated = %d, want 1", result.CampaignsCreated)
	}
}

func TestIngestPlatformUnknownToken(t *testing.T) {
	fixture := newServiceFixture(t, t.TempDir())
	if _, err := fixture.service.IngestPlatform(context.Background(), "linkedin", "richarq"); err == nil {
		t.Fatal("expected error for unknown platform token")
	}
}

func TestIngestPlatformNoMatchingFile(t *testing.T) {
	fixture := newServiceFixture(t, t.TempDir())
	if _, err := fixture.service.IngestPlatform(context.Background(), "google", "richarq"); err == nil {
		t.Fatal("expected error when no file matches the token")
	}
}

func TestIngestAllRejectsForeignTenantScope(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))

	fixture := newServiceFixture(t, dir)
	ctx := auth.ContextWithTenantID(context.Background(), uuid.New())
	if _, err := fixture.service.IngestAll(ctx, "richarq"); err == nil {
		t.Fatal("expected error when the authenticated scope is another tenant")
	}

	scoped := auth.ContextWithTenantID(context.Background(), fixture.tenant.ID)
	if _, err := fixture.service.IngestAll(scoped, "richarq"); err != nil {
		t.Fatalf("matching scope should pass: %v", err)
	}
}

func TestIngestAllUnknownTenant(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))

	fixture := newServiceFixture(t, dir)
	if _, err := fixture.service.IngestAll(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown tenant")
	}
}

func TestIngestAllEmptyDirectory(t *testing.T) {
	fixture := newServiceFixture(t, t.TempDir())
	if _, err := fixture.service.IngestAll(context.Background(), "richarq"); err == nil {
		t.Fatal("expected error for empty intake directory")
	}
}

func TestIngestAllMissingDirectory(t *testing.T) {
	fixture := newServiceFixture(t, filepath.Join(t.TempDir(), "nope"))
	if _, err := fixture.service.IngestAll(context.Background(), "richarq"); err == nil {
		t.Fatal("expected error for missing intake directory")
	}
}

func TestIngestAllRecordsUpsertFailures(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))

	fixture := newServiceFixture(t, dir)
	fixture.campaigns.upsertErr = fmt.Errorf("connection reset")

	results, err := fixture.service.IngestAll(context.Background(), "richarq")
	if err != nil {
		t.Fatalf("IngestAll returned error: %v", err)
	}
	if len(results[0].Errors) != 1 {
		t.Fatalf("expected 1 recorded error, got %v", results[0].Errors)
	}
	if len(fixture.logs.entries) != 1 {
		t.Fatalf("expected 1 ingestion log entry, got %d", len(fixture.logs.entries))
	}
	entry := fixture.logs.entries[0]
	if entry.FileName != "google_ads.csv" || entry.Platform != domain.PlatformGoogleAds {
		t.Errorf("log entry = %+v", entry)
	}
	// Data starts on row 4 of the Google layout (title, range, headers first).
	if entry.RowNumber == nil || *entry.RowNumber != 4 {
		t.Errorf("log entry row = %v, want 4", entry.RowNumber)
	}
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		fileName string
		want     domain.Platform
		matched  bool
	}{
		{"google_ads.csv", domain.PlatformGoogleAds, true},
		{"Meta_Ads_Export.xlsx", domain.PlatformMetaAds, true},
		{"facebook-report.csv", domain.PlatformMetaAds, true},
		{"fb_campaigns.csv", domain.PlatformMetaAds, true},
		{"tiktok_2025.csv", domain.PlatformTikTokAds, true},
		{"report.csv", domain.PlatformGoogleAds, false},
	}
	for _, tc := range cases {
		got, matched := DetectPlatform(tc.fileName)
		if got != tc.want || matched != tc.matched {
			t.Errorf("DetectPlatform(%q) = (%s, %v), want (%s, %v)",
				tc.fileName, got, matched, tc.want, tc.matched)
		}
	}
}

func TestStats(t *testing.T) {
	fixture := newServiceFixture(t, t.TempDir())
	ctx := context.Background()

	for i, platform := range []domain.Platform{domain.PlatformGoogleAds, domain.PlatformGoogleAds, domain.PlatformMetaAds} {
		campaign, err := fixture.campaigns.Upsert(ctx, domain.NewCampaign(
			fixture.tenant.ID, fmt.Sprintf("camp_%d", i), fmt.Sprintf("Campaign %d", i), platform))
		if err != nil {
			t.Fatalf("seed campaign: %v", err)
		}
		if _, err := fixture.metrics.Upsert(ctx, domain.CampaignMetric{
			ID:         uuid.New(),
			CampaignID: campaign.ID,
			Date:       time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("seed metric: %v", err)
		}
	}

	stats, err := fixture.service.Stats(ctx, "richarq")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalCampaigns != 3 {
		t.Errorf("totalCampaigns = %d, want 3", stats.TotalCampaigns)
	}
	if stats.TotalMetrics != 3 {
		t.Errorf("totalMetrics = %d, want 3", stats.TotalMetrics)
	}
	if len(stats.ByPlatform) != 2 {
		t.Fatalf("byPlatform = %+v, want 2 entries", stats.ByPlatform)
	}
	if stats.ByPlatform[0].Platform != string(domain.PlatformGoogleAds) || stats.ByPlatform[0].Count != 2 {
		t.Errorf("byPlatform[0] = %+v", stats.ByPlatform[0])
	}
}
